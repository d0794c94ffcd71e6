package services

import (
	"context"
	"strings"

	"quizpanel/database"
	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"

	"gorm.io/gorm"
)

type LanguageService struct {
	db *gorm.DB
}

func NewLanguageService(db *gorm.DB) *LanguageService {
	return &LanguageService{db: db}
}

type CreateLanguageRequest struct {
	Code       string `json:"code" binding:"required,min=2,max=5"`
	Name       string `json:"name" binding:"required,notblank"`
	NativeName string `json:"native_name" binding:"required,notblank"`
	IsActive   *bool  `json:"is_active"`
	IsDefault  bool   `json:"is_default"`
}

type UpdateLanguageRequest struct {
	Name       *string `json:"name"`
	NativeName *string `json:"native_name"`
	IsActive   *bool   `json:"is_active"`
	IsDefault  *bool   `json:"is_default"`
}

func (s *LanguageService) List(ctx context.Context) ([]models.Language, error) {
	var languages []models.Language
	if err := s.db.WithContext(ctx).Order("is_default DESC, name ASC").Find(&languages).Error; err != nil {
		return nil, storageError(err, "list languages")
	}
	return languages, nil
}

func (s *LanguageService) ListActive(ctx context.Context) ([]models.Language, error) {
	var languages []models.Language
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("is_default DESC, name ASC").
		Find(&languages).Error
	if err != nil {
		return nil, storageError(err, "list active languages")
	}
	return languages, nil
}

func (s *LanguageService) Get(ctx context.Context, id uint) (*models.Language, error) {
	var lang models.Language
	if err := s.db.WithContext(ctx).First(&lang, id).Error; err != nil {
		return nil, lookupError(err, "Language not found")
	}
	return &lang, nil
}

func (s *LanguageService) Create(ctx context.Context, req *CreateLanguageRequest) (*models.Language, error) {
	code := strings.ToLower(strings.TrimSpace(req.Code))
	if len(code) < 2 || len(code) > 5 {
		return nil, apperrors.InvalidArgument("Language code must be 2-5 characters")
	}
	if isBlank(req.Name) || isBlank(req.NativeName) {
		return nil, apperrors.InvalidArgument("Code, name, and native name are required")
	}

	lang := models.Language{
		Code:       code,
		Name:       strings.TrimSpace(req.Name),
		NativeName: strings.TrimSpace(req.NativeName),
		IsActive:   boolOr(req.IsActive, true),
		IsDefault:  req.IsDefault,
	}
	if lang.IsDefault && !lang.IsActive {
		return nil, apperrors.InvalidArgument("The default language must be active")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var defaults int64
		if err := tx.Model(&models.Language{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
			return err
		}

		// The first active language becomes the default
		if defaults == 0 && lang.IsActive {
			lang.IsDefault = true
		}
		if lang.IsDefault && defaults > 0 {
			if err := clearDefault(tx); err != nil {
				return err
			}
		}

		if err := tx.Create(&lang).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return apperrors.Conflict("Language code already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "create language")
	}
	return &lang, nil
}

func (s *LanguageService) Update(ctx context.Context, id uint, req *UpdateLanguageRequest) (*models.Language, error) {
	var lang models.Language
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lang, id).Error; err != nil {
			return lookupError(err, "Language not found")
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			if isBlank(*req.Name) {
				return apperrors.InvalidArgument("Name cannot be empty")
			}
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.NativeName != nil {
			if isBlank(*req.NativeName) {
				return apperrors.InvalidArgument("Native name cannot be empty")
			}
			updates["native_name"] = strings.TrimSpace(*req.NativeName)
		}

		active := boolOr(req.IsActive, lang.IsActive)
		makeDefault := boolOr(req.IsDefault, lang.IsDefault)
		if lang.IsDefault && !makeDefault {
			return apperrors.InvalidArgument("Set another language as default instead")
		}
		if makeDefault && !active {
			return apperrors.InvalidArgument("The default language must be active")
		}
		if req.IsActive != nil {
			updates["is_active"] = active
		}
		if makeDefault && !lang.IsDefault {
			if err := clearDefault(tx); err != nil {
				return err
			}
			updates["is_default"] = true
		}

		if len(updates) == 0 {
			return apperrors.InvalidArgument("No fields to update")
		}
		if err := tx.Model(&lang).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&lang, id).Error
	})
	if err != nil {
		return nil, storageError(err, "update language")
	}
	return &lang, nil
}

// Delete removes a language together with every translation stored under its code.
func (s *LanguageService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lang models.Language
		if err := tx.First(&lang, id).Error; err != nil {
			return lookupError(err, "Language not found")
		}
		if lang.IsDefault {
			return apperrors.InvalidArgument("Cannot delete default language")
		}

		// Delete content rows keyed by the language code
		if err := tx.Where("language_code = ?", lang.Code).Delete(&models.ContentItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("language_code = ?", lang.Code).Delete(&models.QuestionContent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("language_code = ?", lang.Code).Delete(&models.OptionContent{}).Error; err != nil {
			return err
		}

		return tx.Delete(&lang).Error
	})
	if err != nil {
		return storageError(err, "delete language")
	}
	return nil
}

func clearDefault(tx *gorm.DB) error {
	return tx.Model(&models.Language{}).Where("is_default = ?", true).Update("is_default", false).Error
}

func languageExists(tx *gorm.DB, code string, activeOnly bool) (bool, error) {
	query := tx.Model(&models.Language{}).Where("code = ?", code)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
