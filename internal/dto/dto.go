package dto

import "cosmo-agent/internal/model"

type SyncResponse struct {
	Report *model.CycleReport `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}
