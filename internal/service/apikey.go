package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/attendance/internal/hash"
	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/metrics"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/repo"
)

const (
	APIKeyMarker = "pa_"

	apiKeyPrefixLen    = len(APIKeyMarker) + 6
	apiKeyTouchTimeout = 5 * time.Second
)

// APIKeyService manages keys for the machine-to-machine API. Keys are
// stored as SHA-256 digests and the plaintext is shown once, at creation.
type APIKeyService struct {
	Keys    APIKeyStore
	Clock   Clock
	Metrics *metrics.Metrics

	touches sync.WaitGroup
}

// Generate returns a fresh key id and plaintext key.
func (s *APIKeyService) Generate() (string, string, error) {
	id, err := randomString(apiKeyIDBytes)
	if err != nil {
		return "", "", err
	}
	secret, err := randomString(apiKeySecretBytes)
	if err != nil {
		return "", "", err
	}
	return id, APIKeyMarker + secret, nil
}

func (s *APIKeyService) Create(ctx context.Context, name, createdBy string) (*models.APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", invalid("name", "is required")
	}

	id, key, err := s.Generate()
	if err != nil {
		return nil, "", err
	}

	k := &models.APIKey{
		ID:        id,
		Name:      name,
		KeyHash:   hash.Sha256Hex(key),
		KeyPrefix: key[:apiKeyPrefixLen],
		CreatedBy: createdBy,
		IsActive:  true,
		CreatedAt: s.Clock.now(),
	}
	if err := s.Keys.CreateAPIKey(ctx, k); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", ErrConflict
		}
		return nil, "", storage("create api key", err)
	}

	logging.FromContext(ctx).Info("api_key_created", "key_id", k.ID, "name", k.Name, "created_by", createdBy)
	return k, key, nil
}

// Validate returns the key record, or nil when the key is unknown or
// inactive. The last-used timestamp is written in the background and never
// affects the result.
func (s *APIKeyService) Validate(ctx context.Context, key string) (*models.APIKey, error) {
	if !strings.HasPrefix(key, APIKeyMarker) {
		s.Metrics.APIKey("invalid")
		return nil, nil
	}

	k, err := s.Keys.FindAPIKeyByHash(ctx, hash.Sha256Hex(key))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Metrics.APIKey("invalid")
			return nil, nil
		}
		s.Metrics.APIKey("error")
		return nil, storage("find api key", err)
	}
	if !k.IsActive {
		s.Metrics.APIKey("inactive")
		return nil, nil
	}

	s.Metrics.APIKey("ok")
	s.touch(ctx, k.ID)
	return k, nil
}

func (s *APIKeyService) touch(ctx context.Context, id string) {
	l := logging.FromContext(ctx)
	at := s.Clock.now()

	s.touches.Add(1)
	go func() {
		defer s.touches.Done()

		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), apiKeyTouchTimeout)
		defer cancel()

		if err := s.Keys.TouchAPIKey(tctx, id, at); err != nil {
			s.Metrics.AuditWriteFailed()
			l.Warn("api_key_touch_failed", "key_id", id, "error", err)
		}
	}()
}

// Wait blocks until pending last-used writes finish.
func (s *APIKeyService) Wait() {
	s.touches.Wait()
}

func (s *APIKeyService) List(ctx context.Context) ([]models.APIKey, error) {
	keys, err := s.Keys.ListAPIKeys(ctx)
	if err != nil {
		return nil, storage("list api keys", err)
	}
	return keys, nil
}

func (s *APIKeyService) Get(ctx context.Context, id string) (*models.APIKey, error) {
	k, err := s.Keys.FindAPIKeyByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storage("find api key", err)
	}
	return k, nil
}

// ToggleActive flips the key's active flag and returns the updated record.
func (s *APIKeyService) ToggleActive(ctx context.Context, id string) (*models.APIKey, error) {
	k, err := s.Keys.ToggleAPIKey(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storage("toggle api key", err)
	}
	logging.FromContext(ctx).Info("api_key_toggled", "key_id", id, "active", k.IsActive)
	return k, nil
}

// Delete reports whether a key was removed.
func (s *APIKeyService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.Keys.DeleteAPIKey(ctx, id)
	if err != nil {
		return false, storage("delete api key", err)
	}
	if ok {
		logging.FromContext(ctx).Info("api_key_deleted", "key_id", id)
	}
	return ok, nil
}
