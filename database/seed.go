package database

import (
	"errors"
	"fmt"

	"quizpanel/models"
	"quizpanel/pkg/logger"
	"quizpanel/pkg/security"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

type seedOption struct {
	correct bool
	text    map[string]string
}

type seedQuestion struct {
	questionType string
	text         map[string]string
	explanation  map[string]string
	options      []seedOption
}

var seedLanguages = []models.Language{
	{Code: "en", Name: "English", NativeName: "English", IsActive: true, IsDefault: true},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", IsActive: true},
	{Code: "ur", Name: "Urdu", NativeName: "اردو", IsActive: true},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", IsActive: true},
	{Code: "es", Name: "Spanish", NativeName: "Español", IsActive: true},
	{Code: "fr", Name: "French", NativeName: "Français", IsActive: true},
}

var seedPages = []models.Page{
	{Slug: "home", Title: "Home Page", Description: "Main landing page", IsActive: true},
	{Slug: "about", Title: "About Us", Description: "About our company", IsActive: true},
	{Slug: "contact", Title: "Contact Us", Description: "Get in touch with us", IsActive: true},
	{Slug: "services", Title: "Our Services", Description: "Services we offer", IsActive: true},
	{Slug: "products", Title: "Products", Description: "Our product catalog", IsActive: true},
}

var seedContent = []models.ContentItem{
	{Page: "home", Section: "hero", Key: "title", LanguageCode: "en", Content: "Welcome to Our Platform"},
	{Page: "home", Section: "hero", Key: "title", LanguageCode: "hi", Content: "हमारे प्लेटफॉर्म में आपका स्वागत है"},
	{Page: "home", Section: "hero", Key: "title", LanguageCode: "ur", Content: "ہمارے پلیٹ فارم میں خوش آمدید"},
	{Page: "home", Section: "hero", Key: "subtitle", LanguageCode: "en", Content: "Build amazing things with our tools"},
	{Page: "home", Section: "hero", Key: "subtitle", LanguageCode: "hi", Content: "हमारे उपकरणों से अद्भुत चीजें बनाएं"},
	{Page: "home", Section: "hero", Key: "subtitle", LanguageCode: "ur", Content: "ہمارے ٹولز کے ساتھ حیرت انگیز چیزیں بنائیں"},
	{Page: "about", Section: "main", Key: "title", LanguageCode: "en", Content: "About Our Company"},
	{Page: "about", Section: "main", Key: "title", LanguageCode: "hi", Content: "हमारी कंपनी के बारे में"},
	{Page: "about", Section: "main", Key: "title", LanguageCode: "ur", Content: "ہماری کمپنی کے بارے میں"},
	{Page: "contact", Section: "form", Key: "title", LanguageCode: "en", Content: "Get In Touch"},
	{Page: "contact", Section: "form", Key: "title", LanguageCode: "hi", Content: "संपर्क में रहें"},
	{Page: "contact", Section: "form", Key: "title", LanguageCode: "ur", Content: "رابطے میں رہیں"},
}

var seedQuestions = []seedQuestion{
	{
		questionType: models.QuestionTypeText,
		text: map[string]string{
			"en": "What is the capital of France?",
			"hi": "फ्रांस की राजधानी क्या है?",
			"ur": "فرانس کا دارالحکومت کیا ہے؟",
		},
		explanation: map[string]string{
			"en": "Paris is the capital and largest city of France.",
			"hi": "पेरिस फ्रांस की राजधानी और सबसे बड़ा शहर है।",
			"ur": "پیرس فرانس کا دارالحکومت اور سب سے بڑا شہر ہے۔",
		},
		options: []seedOption{
			{correct: true, text: map[string]string{"en": "Paris", "hi": "पेरिस", "ur": "پیرس"}},
			{text: map[string]string{"en": "London", "hi": "लंदन", "ur": "لندن"}},
			{text: map[string]string{"en": "Berlin", "hi": "बर्लिन", "ur": "برلن"}},
			{text: map[string]string{"en": "Madrid", "hi": "मैड्रिड", "ur": "میڈرڈ"}},
		},
	},
	{
		questionType: models.QuestionTypeMedia,
		text: map[string]string{
			"en": "Which planet is known as the Red Planet?",
			"hi": "किस ग्रह को लाल ग्रह के रूप में जाना जाता है?",
			"ur": "کون سا سیارہ سرخ سیارہ کے نام سے جانا جاتا ہے؟",
		},
		explanation: map[string]string{
			"en": "Mars is known as the Red Planet due to its reddish appearance.",
			"hi": "मंगल ग्रह को इसकी लाल रंग की उपस्थिति के कारण लाल ग्रह के रूप में जाना जाता है।",
			"ur": "مریخ کو اس کی سرخ رنگت کی وجہ سے سرخ سیارہ کہا جاتا ہے۔",
		},
		options: []seedOption{
			{correct: true, text: map[string]string{"en": "Mars", "hi": "मंगल", "ur": "مریخ"}},
			{text: map[string]string{"en": "Venus", "hi": "शुक्र", "ur": "زہرہ"}},
			{text: map[string]string{"en": "Jupiter", "hi": "बृहस्पति", "ur": "مشتری"}},
			{text: map[string]string{"en": "Saturn", "hi": "शनि", "ur": "زحل"}},
		},
	},
}

// Seed inserts the default admin, languages, pages, sample content and sample quiz.
// Rows that already exist are left untouched.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		adminID, err := seedAdmin(tx)
		if err != nil {
			return err
		}

		// A default already chosen by an admin wins over the seeded one
		var defaults int64
		if err := tx.Model(&models.Language{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
			return err
		}
		for _, lang := range seedLanguages {
			lang := lang
			if defaults > 0 {
				lang.IsDefault = false
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lang).Error; err != nil {
				return fmt.Errorf("seed language %s: %w", lang.Code, err)
			}
		}

		for _, page := range seedPages {
			page := page
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&page).Error; err != nil {
				return fmt.Errorf("seed page %s: %w", page.Slug, err)
			}
		}

		for _, item := range seedContent {
			item := item
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
				return fmt.Errorf("seed content %s.%s.%s: %w", item.Page, item.Section, item.Key, err)
			}
		}

		return seedQuiz(tx, adminID)
	})
}

func seedAdmin(tx *gorm.DB) (uint, error) {
	var admin models.User
	err := tx.Where("username = ?", DefaultAdminUsername).First(&admin).Error
	if err == nil {
		return admin.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	hash, err := security.HashPassword(DefaultAdminPassword)
	if err != nil {
		return 0, fmt.Errorf("hash admin password: %w", err)
	}
	admin = models.User{
		Username: DefaultAdminUsername,
		Email:    "admin@example.com",
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return 0, fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("Default admin user created", "username", DefaultAdminUsername)
	return admin.ID, nil
}

func seedQuiz(tx *gorm.DB, adminID uint) error {
	var count int64
	if err := tx.Model(&models.Quiz{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	quiz := models.Quiz{
		Title:       "General Knowledge Quiz",
		Description: "Test your general knowledge",
		IsActive:    true,
		CreatedBy:   &adminID,
	}
	if err := tx.Create(&quiz).Error; err != nil {
		return fmt.Errorf("seed quiz: %w", err)
	}

	for i, sq := range seedQuestions {
		question := models.Question{
			QuizID:       quiz.ID,
			QuestionType: sq.questionType,
			OrderIndex:   i + 1,
			IsActive:     true,
		}
		for _, code := range []string{"en", "hi", "ur"} {
			explanation := sq.explanation[code]
			question.Contents = append(question.Contents, models.QuestionContent{
				LanguageCode: code,
				QuestionText: sq.text[code],
				Explanation:  &explanation,
			})
		}
		for j, so := range sq.options {
			option := models.Option{
				OrderIndex: j + 1,
				IsCorrect:  so.correct,
				IsActive:   true,
			}
			for _, code := range []string{"en", "hi", "ur"} {
				option.Contents = append(option.Contents, models.OptionContent{
					LanguageCode: code,
					OptionText:   so.text[code],
				})
			}
			question.Options = append(question.Options, option)
		}

		// Create saves the nested contents and options with the question
		if err := tx.Create(&question).Error; err != nil {
			return fmt.Errorf("seed question %d: %w", i+1, err)
		}
	}

	logger.Info("Sample quiz created", "quiz_id", quiz.ID)
	return nil
}
