package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmayman/mealio/internal/backup"
	"github.com/dmayman/mealio/internal/store"
)

type BackupHandler struct {
	manager     *backup.Manager
	backupStore *store.BackupStore
	logger      *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: manager, backupStore: bs, logger: logger}
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := parsePaging(r, 50)
	backups, err := h.backupStore.List(limit)
	if err != nil {
		h.logger.Error("failed to list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	totalSize, err := h.backupStore.TotalSize()
	if err != nil {
		h.logger.Error("failed to total backup size", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"backups":          backups,
		"total_size_bytes": totalSize,
	})
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.manager.Status()
	latest, err := h.backupStore.LatestCompleted()
	if err != nil {
		h.logger.Error("failed to load latest backup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load backup status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"latest": latest,
	})
}

// RunNow takes a backup synchronously. Snapshots of a small household
// database finish fast enough that the request can wait for the upload.
func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("backup failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	record, err := h.backupStore.GetByID(id)
	if err != nil {
		h.logger.Error("failed to load backup record", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load backup record")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Download streams the encrypted backup file. The client needs the
// passphrase to decrypt it offline.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup ID")
		return
	}

	record, err := h.backupStore.GetByID(id)
	if err != nil {
		h.logger.Error("failed to load backup record", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load backup record")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("backup download failed", "error", err)
		writeError(w, http.StatusInternalServerError, "backup download failed")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+record.Filename+`"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	io.Copy(w, body)
}

// Restore replaces the live database with the chosen snapshot. On success
// the process exits and the supervisor restarts it, so no response is sent.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup ID")
		return
	}
	if err := h.manager.Restore(r.Context(), id); err != nil {
		h.logger.Error("restore failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
}
