// Package pipeline drives the per-page fusion of all detector
// signals: the residual text pool, scene-text reconciliation, the
// three reconstruction strategies and the policy that arbitrates
// between them, header inference, per-cell recognition fallback and
// residual free-text recovery. Pages are independent; the Runner
// processes them on a bounded worker pool and isolates failures per
// page.
package pipeline
