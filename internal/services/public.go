package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/signature"
)

// findByToken resolves a public token to its quote. Drafts are invisible: the
// link is only handed out at send time, so anything reachable before that is
// treated as absent. Malformed and unknown tokens produce the same error.
func (s *QuoteService) findByToken(token string) (*models.Quote, error) {
	if token == "" || len(token) > 64 {
		return nil, ErrNotFound
	}
	var q models.Quote
	err := s.DB.Where("public_token = ?", token).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Signature").
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if q.Status == models.QuoteStatusDraft {
		return nil, ErrNotFound
	}
	return &q, nil
}

// PublicView returns the quote behind a token and records the view event.
// Repeated views never fail: the first timestamp is written once, later views
// bump the counter.
func (s *QuoteService) PublicView(token string) (*models.Quote, error) {
	q, err := s.findByToken(token)
	if err != nil {
		return nil, err
	}
	if err := s.TrackView(token); err != nil {
		return nil, err
	}
	// reflect the tracking in the returned snapshot without a reload
	now := s.Now()
	if q.FirstViewedAt == nil {
		q.FirstViewedAt = &now
	}
	q.LastViewedAt = &now
	q.ViewCount++
	return q, nil
}

// TrackView records a view of the public quote page.
func (s *QuoteService) TrackView(token string) error {
	q, err := s.findByToken(token)
	if err != nil {
		return err
	}
	now := s.Now()
	return s.DB.Model(&models.Quote{}).Where("id = ?", q.ID).
		Updates(map[string]interface{}{
			"first_viewed_at": gorm.Expr("COALESCE(first_viewed_at, ?)", now),
			"last_viewed_at":  now,
			"view_count":      gorm.Expr("view_count + 1"),
		}).Error
}

// Approve transitions sent -> approved, persisting the signature artifact
// atomically with the status flip. Expired quotes cannot be approved: the
// validity date is printed on the document, and a lapsed offer must be
// re-issued rather than silently accepted.
func (s *QuoteService) Approve(token, signatureDataURI, ipAddress, userAgent string) (*models.Quote, error) {
	q, err := s.findByToken(token)
	if err != nil {
		return nil, err
	}
	if q.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	now := s.Now()
	if q.IsExpired(now) {
		return nil, ErrExpired
	}
	if _, err := signature.Decode(signatureDataURI); err != nil {
		return nil, err
	}

	sig := models.QuoteSignature{
		QuoteID:      q.ID,
		ImageDataURI: signatureDataURI,
		SignedAt:     now,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Quote{}).
			Where("id = ? AND status = ?", q.ID, models.QuoteStatusSent).
			Updates(map[string]interface{}{"status": models.QuoteStatusApproved, "decided_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}
		return tx.Create(&sig).Error
	})
	if err != nil {
		return nil, err
	}
	q.Status = models.QuoteStatusApproved
	q.DecidedAt = &now
	q.Signature = &sig
	return q, nil
}

// Reject transitions sent -> rejected. No signature required; rejecting an
// expired quote is allowed, as declining a lapsed offer harms no one.
func (s *QuoteService) Reject(token string) (*models.Quote, error) {
	q, err := s.findByToken(token)
	if err != nil {
		return nil, err
	}
	if q.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	now := s.Now()
	res := s.DB.Model(&models.Quote{}).
		Where("id = ? AND status = ?", q.ID, models.QuoteStatusSent).
		Updates(map[string]interface{}{"status": models.QuoteStatusRejected, "decided_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyProcessed
	}
	q.Status = models.QuoteStatusRejected
	q.DecidedAt = &now
	return q, nil
}

// DisplayStatusNow is a convenience for handlers that need the expired overlay.
func (s *QuoteService) DisplayStatusNow(q *models.Quote) models.QuoteStatus {
	return q.DisplayStatus(s.Now())
}
