package services

import (
	"context"
	"strings"
	"time"

	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentService struct {
	db *gorm.DB
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

type UpsertContentRequest struct {
	Page         string `json:"page" binding:"required,notblank"`
	Section      string `json:"section"`
	Key          string `json:"key"`
	LanguageCode string `json:"language_code" binding:"required,min=2,max=5"`
	Content      string `json:"content"`
}

type TranslationInput struct {
	LanguageCode string `json:"language_code" binding:"required"`
	Content      string `json:"content"`
}

type BulkContentRequest struct {
	Page         string             `json:"page" binding:"required,notblank"`
	Section      string             `json:"section"`
	Key          string             `json:"key"`
	Translations []TranslationInput `json:"translations" binding:"required,min=1,dive"`
}

type UpdateContentRequest struct {
	Content string `json:"content"`
}

type ContentEntry struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sections maps section → key → entry.
type Sections map[string]map[string]ContentEntry

type LanguageContent struct {
	LanguageName *string  `json:"language_name"`
	Sections     Sections `json:"sections"`
}

type PageContent struct {
	PageTitle *string                     `json:"page_title"`
	Languages map[string]*LanguageContent `json:"languages"`
}

type PageSections struct {
	PageTitle    *string  `json:"page_title"`
	LanguageName *string  `json:"language_name"`
	Sections     Sections `json:"sections"`
}

type SimpleEntry struct {
	Content      string  `json:"content"`
	Language     string  `json:"language,omitempty"`
	LanguageName *string `json:"language_name,omitempty"`
}

type StructureEntry struct {
	Section string `json:"section"`
	Key     string `json:"key"`
}

func (s *ContentService) ListPages(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("title").Find(&pages).Error; err != nil {
		return nil, storageError(err, "list pages")
	}
	return pages, nil
}

// GetAll groups every content row by page, then language, then section and key.
func (s *ContentService) GetAll(ctx context.Context) (map[string]*PageContent, error) {
	items, titles, names, err := s.load(ctx, "")
	if err != nil {
		return nil, err
	}

	result := make(map[string]*PageContent)
	for _, item := range items {
		page, ok := result[item.Page]
		if !ok {
			page = &PageContent{
				PageTitle: lookup(titles, item.Page),
				Languages: make(map[string]*LanguageContent),
			}
			result[item.Page] = page
		}
		lang, ok := page.Languages[item.LanguageCode]
		if !ok {
			lang = &LanguageContent{
				LanguageName: lookup(names, item.LanguageCode),
				Sections:     make(Sections),
			}
			page.Languages[item.LanguageCode] = lang
		}
		lang.Sections.put(item)
	}
	return result, nil
}

// GetByLanguage groups one language's content by page, then section and key.
func (s *ContentService) GetByLanguage(ctx context.Context, code string) (map[string]*PageSections, error) {
	items, titles, names, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*PageSections)
	for _, item := range items {
		page, ok := result[item.Page]
		if !ok {
			page = &PageSections{
				PageTitle:    lookup(titles, item.Page),
				LanguageName: lookup(names, item.LanguageCode),
				Sections:     make(Sections),
			}
			result[item.Page] = page
		}
		page.Sections.put(item)
	}
	return result, nil
}

func (s *ContentService) GetByLanguageName(ctx context.Context, name string) (map[string]*PageSections, error) {
	var lang models.Language
	err := s.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&lang).Error
	if err != nil {
		return nil, lookupError(err, "Language not found")
	}
	return s.GetByLanguage(ctx, lang.Code)
}

// GetSimple flattens section and key into one attribute per page.
// Without a language code every language is returned and each entry is annotated with it.
func (s *ContentService) GetSimple(ctx context.Context, code string) (map[string]map[string]SimpleEntry, error) {
	items, _, names, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}

	result := make(map[string]map[string]SimpleEntry)
	for _, item := range items {
		attrs, ok := result[item.Page]
		if !ok {
			attrs = make(map[string]SimpleEntry)
			result[item.Page] = attrs
		}
		entry := SimpleEntry{Content: item.Content}
		if code == "" {
			entry.Language = item.LanguageCode
			entry.LanguageName = lookup(names, item.LanguageCode)
		}
		attrs[AttributeName(item.Section, item.Key)] = entry
	}
	return result, nil
}

func (s *ContentService) GetPage(ctx context.Context, page, code string) ([]models.ContentItem, error) {
	query := s.db.WithContext(ctx).Where("page = ?", page)
	if code != "" {
		query = query.Where("language_code = ?", code)
	}

	var items []models.ContentItem
	if err := query.Order("section, key, language_code").Find(&items).Error; err != nil {
		return nil, storageError(err, "get page content")
	}
	return items, nil
}

func (s *ContentService) GetStructure(ctx context.Context, page string) ([]StructureEntry, error) {
	var entries []StructureEntry
	err := s.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Distinct("section", "key").
		Where("page = ?", page).
		Order("section, key").
		Scan(&entries).Error
	if err != nil {
		return nil, storageError(err, "get page structure")
	}
	return entries, nil
}

func (s *ContentService) Upsert(ctx context.Context, req *UpsertContentRequest) (*models.ContentItem, error) {
	if err := validateAddress(req.Page, req.Section, req.Key); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.LanguageCode)
	if code == "" {
		return nil, apperrors.InvalidArgument("Language code is required")
	}

	var item models.ContentItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := languageExists(tx, code, true)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.InvalidArgument("Invalid or inactive language code")
		}

		saved, err := upsertContent(tx, req.Page, req.Section, req.Key, code, req.Content)
		if err != nil {
			return err
		}
		item = *saved
		return nil
	})
	if err != nil {
		return nil, storageError(err, "upsert content")
	}
	return &item, nil
}

// BulkUpsert writes several translations of one attribute atomically.
// All language codes are checked before anything is written.
func (s *ContentService) BulkUpsert(ctx context.Context, req *BulkContentRequest) ([]models.ContentItem, error) {
	if err := validateAddress(req.Page, req.Section, req.Key); err != nil {
		return nil, err
	}
	if len(req.Translations) == 0 {
		return nil, apperrors.InvalidArgument("Translations are required")
	}

	codes := make([]string, 0, len(req.Translations))
	for _, tr := range req.Translations {
		if isBlank(tr.LanguageCode) {
			return nil, apperrors.InvalidArgument("Every translation needs a language code")
		}
		codes = append(codes, strings.TrimSpace(tr.LanguageCode))
	}

	var saved []models.ContentItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var valid []string
		if err := tx.Model(&models.Language{}).
			Where("code IN ? AND is_active = ?", codes, true).
			Pluck("code", &valid).Error; err != nil {
			return err
		}
		known := make(map[string]bool, len(valid))
		for _, c := range valid {
			known[c] = true
		}
		var invalid []string
		for _, c := range codes {
			if !known[c] {
				invalid = append(invalid, c)
			}
		}
		if len(invalid) > 0 {
			return apperrors.InvalidArgument("Invalid language codes: " + strings.Join(invalid, ", "))
		}

		for i, tr := range req.Translations {
			item, err := upsertContent(tx, req.Page, req.Section, req.Key, codes[i], tr.Content)
			if err != nil {
				return err
			}
			saved = append(saved, *item)
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "bulk upsert content")
	}
	return saved, nil
}

func (s *ContentService) Update(ctx context.Context, id uint, content string) (*models.ContentItem, error) {
	var item models.ContentItem
	db := s.db.WithContext(ctx)
	if err := db.First(&item, id).Error; err != nil {
		return nil, lookupError(err, "Content not found")
	}
	if err := db.Model(&item).Update("content", content).Error; err != nil {
		return nil, storageError(err, "update content")
	}
	if err := db.First(&item, id).Error; err != nil {
		return nil, storageError(err, "reload content")
	}
	return &item, nil
}

func (s *ContentService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.ContentItem{}, id)
	if result.Error != nil {
		return storageError(result.Error, "delete content")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Content not found")
	}
	return nil
}

// AttributeName joins section and key as section_key, or returns whichever one is set.
func AttributeName(section, key string) string {
	switch {
	case section != "" && key != "":
		return section + "_" + key
	case key != "":
		return key
	default:
		return section
	}
}

func (s *ContentService) load(ctx context.Context, code string) ([]models.ContentItem, map[string]string, map[string]string, error) {
	db := s.db.WithContext(ctx)

	query := db.Order("page, language_code, section, key")
	if code != "" {
		query = query.Where("language_code = ?", code)
	}
	var items []models.ContentItem
	if err := query.Find(&items).Error; err != nil {
		return nil, nil, nil, storageError(err, "load content")
	}

	var pages []models.Page
	if err := db.Find(&pages).Error; err != nil {
		return nil, nil, nil, storageError(err, "load pages")
	}
	titles := make(map[string]string, len(pages))
	for _, p := range pages {
		titles[p.Slug] = p.Title
	}

	var languages []models.Language
	if err := db.Find(&languages).Error; err != nil {
		return nil, nil, nil, storageError(err, "load languages")
	}
	names := make(map[string]string, len(languages))
	for _, l := range languages {
		names[l.Code] = l.Name
	}

	return items, titles, names, nil
}

func upsertContent(tx *gorm.DB, page, section, key, code, content string) (*models.ContentItem, error) {
	item := models.ContentItem{
		Page:         page,
		Section:      section,
		Key:          key,
		LanguageCode: code,
		Content:      content,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page"}, {Name: "section"}, {Name: "key"}, {Name: "language_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	// Reload so updates report the original id and created_at
	var saved models.ContentItem
	if err := tx.Where(map[string]interface{}{
		"page":          page,
		"section":       section,
		"key":           key,
		"language_code": code,
	}).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func validateAddress(page, section, key string) error {
	if isBlank(page) {
		return apperrors.InvalidArgument("Page is required")
	}
	if isBlank(section) && isBlank(key) {
		return apperrors.InvalidArgument("Section or key is required")
	}
	return nil
}

func (s Sections) put(item models.ContentItem) {
	keys, ok := s[item.Section]
	if !ok {
		keys = make(map[string]ContentEntry)
		s[item.Section] = keys
	}
	keys[item.Key] = ContentEntry{
		ID:        item.ID,
		Content:   item.Content,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func lookup(m map[string]string, key string) *string {
	if v, ok := m[key]; ok {
		return &v
	}
	return nil
}
