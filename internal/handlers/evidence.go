package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"isms-platform/internal/database"
	"isms-platform/internal/engine"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateEvidence принимает multipart-форму: control_id, title, description,
// content_text и опциональный файл. Файл кладётся на диск здесь, движку
// уходит только (имя, путь).
func CreateEvidence(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	controlID, err := strconv.Atoi(c.PostForm("control_id"))
	if err != nil || controlID <= 0 {
		badRequest(c, "invalid control_id")
		return
	}
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		badRequest(c, "title is required")
		return
	}

	var stored *engine.StoredFile
	file, err := c.FormFile("file")
	if err == nil && file != nil {
		if err := os.MkdirAll(EvidenceDir, 0o755); err != nil {
			engineError(c, err)
			return
		}
		name := filepath.Base(file.Filename)
		path := filepath.Join(EvidenceDir, fmt.Sprintf("%s_%s", uuid.New().String(), name))
		if err := c.SaveUploadedFile(file, path); err != nil {
			engineError(c, err)
			return
		}
		stored = &engine.StoredFile{Name: name, Path: path}
	}

	evidence, err := engine.CreateEvidence(database.DB, engine.CreateEvidenceInput{
		ControlID:    uint(controlID),
		Title:        title,
		Description:  c.PostForm("description"),
		ContentText:  c.PostForm("content_text"),
		UploadedByID: &user.ID,
		File:         stored,
	})
	if err != nil {
		// запись не создана — подчищаем уже сохранённый файл
		if stored != nil {
			_ = os.Remove(stored.Path)
		}
		engineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, evidence)
}

func ListEvidence(c *gin.Context) {
	var controlID *uint
	if raw := c.Query("control_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			badRequest(c, "invalid control_id")
			return
		}
		v := uint(id)
		controlID = &v
	}

	evidence, err := engine.ListEvidence(database.DB, controlID)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, evidence)
}

func DeleteEvidence(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := engine.DeleteEvidence(database.DB, id)
	if err != nil {
		engineError(c, err)
		return
	}
	if path != "" {
		// файл убираем best-effort, запись уже удалена
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove evidence file")
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "evidence deleted"})
}
