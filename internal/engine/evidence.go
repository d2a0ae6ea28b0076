package engine

import (
	"errors"

	"isms-platform/internal/models"

	"gorm.io/gorm"
)

// StoredFile — имя и путь уже сохранённого файла. Движок байты файла не
// читает и не пишет, этим занимается вызывающий слой.
type StoredFile struct {
	Name string
	Path string
}

type CreateEvidenceInput struct {
	ControlID    uint
	Title        string
	Description  string
	ContentText  string
	UploadedByID *uint
	File         *StoredFile
}

// CreateEvidence привязывает свидетельство к существующему контролю.
// Текст и файл не взаимоисключающие: допустимы оба сразу.
func CreateEvidence(db *gorm.DB, in CreateEvidenceInput) (*models.Evidence, error) {
	var control models.Control
	if err := db.First(&control, in.ControlID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("control", in.ControlID)
		}
		return nil, err
	}

	evidence := models.Evidence{
		ControlID:    in.ControlID,
		Title:        in.Title,
		Description:  in.Description,
		ContentText:  in.ContentText,
		UploadedByID: in.UploadedByID,
	}
	if in.File != nil {
		evidence.FileName = in.File.Name
		evidence.FilePath = in.File.Path
	}

	if err := db.Create(&evidence).Error; err != nil {
		return nil, err
	}
	return &evidence, nil
}

// ListEvidence — все свидетельства, опционально по одному контролю.
func ListEvidence(db *gorm.DB, controlID *uint) ([]models.Evidence, error) {
	q := db.Order("id asc")
	if controlID != nil {
		q = q.Where("control_id = ?", *controlID)
	}
	var evidence []models.Evidence
	if err := q.Find(&evidence).Error; err != nil {
		return nil, err
	}
	return evidence, nil
}

// DeleteEvidence удаляет запись и возвращает путь сохранённого файла,
// чтобы вызывающий слой мог убрать его с диска.
func DeleteEvidence(db *gorm.DB, evidenceID uint) (string, error) {
	var evidence models.Evidence
	if err := db.First(&evidence, evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notFound("evidence", evidenceID)
		}
		return "", err
	}
	if err := db.Delete(&evidence).Error; err != nil {
		return "", err
	}
	return evidence.FilePath, nil
}
