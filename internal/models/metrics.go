package models

import "time"

// SystemMetrics is an aggregated runtime snapshot for ops endpoints.
type SystemMetrics struct {
	SessionsBooked           uint64    `json:"sessions_booked"`
	BookingRejections        uint64    `json:"booking_rejections"`
	GapFillOffers            uint64    `json:"gap_fill_offers"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
