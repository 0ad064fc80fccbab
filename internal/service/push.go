package service

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/lifecycle"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/pkg/encrypt"
)

// PushService stores browser push subscriptions encrypted at rest.
type PushService struct {
	db     *gorm.DB
	aesKey string
}

func NewPushService(db *gorm.DB, aesKey string) *PushService {
	return &PushService{db: db, aesKey: aesKey}
}

type subscriptionPayload struct {
	Endpoint string          `json:"endpoint"`
	Keys     json.RawMessage `json:"keys"`
}

func (s *PushService) Subscribe(userID uint, rawSubscription []byte) error {
	var payload subscriptionPayload
	if err := json.Unmarshal(rawSubscription, &payload); err != nil || payload.Endpoint == "" {
		return lifecycle.Invalid("invalid subscription data structure")
	}

	ciphertext, err := encrypt.AESEncrypt(s.aesKey, string(rawSubscription))
	if err != nil {
		return err
	}
	hash := encrypt.SHA256Hex(payload.Endpoint)

	var existing model.PushSubscription
	err = s.db.Where("endpoint_hash = ?", hash).First(&existing).Error
	if err == nil {
		// Same endpoint resubscribed, possibly by a different session.
		return s.db.Model(&existing).Updates(map[string]interface{}{
			"user_id":    userID,
			"ciphertext": ciphertext,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	sub := model.PushSubscription{
		UserID:       userID,
		EndpointHash: hash,
		Ciphertext:   ciphertext,
	}
	return s.db.Create(&sub).Error
}

func (s *PushService) Unsubscribe(userID uint, endpoint string) error {
	res := s.db.Where("user_id = ? AND endpoint_hash = ?", userID, encrypt.SHA256Hex(endpoint)).
		Delete(&model.PushSubscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lifecycle.NotFound("subscription not found")
	}
	return nil
}

func (s *PushService) CountForUser(userID uint) int64 {
	var count int64
	s.db.Model(&model.PushSubscription{}).Where("user_id = ?", userID).Count(&count)
	return count
}
