package service

import (
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/repo"
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// AuditService пишет append-only журнал действий. Сбой записи никогда
// не прерывает основную операцию: он логируется и глотается.
type AuditService struct {
	audit  repo.AuditRepository
	logger *zap.SugaredLogger
}

func NewAuditService(audit repo.AuditRepository, logger *zap.SugaredLogger) *AuditService {
	return &AuditService{audit: audit, logger: logger}
}

// Record добавляет запись. actorID может быть пустым для анонимных,
// но разрешённых действий. details сериализуется в JSON.
func (s *AuditService) Record(ctx context.Context, actorID, action string, details any, remoteAddr string) {
	entry := &model.AuditLog{Action: action, RemoteAddr: remoteAddr}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		} else {
			s.logger.Warnw("audit details not serializable", "action", action, "error", err)
		}
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warnw("audit write failed", "action", action, "error", err)
	}
}

// List — чтение журнала (только для администраторов, проверка
// на уровне хендлера).
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	return s.audit.List(ctx, limit, offset)
}
