package handlers

import (
	"savora-admin-service/internal/config"
	"savora-admin-service/internal/docstore"
	"savora-admin-service/internal/queue"
	"savora-admin-service/internal/reporting"
	"savora-admin-service/internal/storage"

	"go.uber.org/zap"
)

type Handler struct {
	Store   *docstore.Store
	Logger  *zap.Logger
	Config  config.Config
	Queue   *queue.Client
	Reports *reporting.Controller
	Objects *storage.ObjectStore
}
