package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"quizpanel/database"
	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"
	"quizpanel/pkg/logger"
	"quizpanel/pkg/security"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const maxUniqueIDAttempts = 5

// CodeGenerator produces candidate public session ids.
type CodeGenerator func() (string, error)

type SessionService struct {
	db      *gorm.DB
	cache   SessionCache
	newCode CodeGenerator
	loads   singleflight.Group
}

type SessionServiceOption func(*SessionService)

func WithSessionCache(cache SessionCache) SessionServiceOption {
	return func(s *SessionService) {
		if cache != nil {
			s.cache = cache
		}
	}
}

func WithCodeGenerator(gen CodeGenerator) SessionServiceOption {
	return func(s *SessionService) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

func NewSessionService(db *gorm.DB, opts ...SessionServiceOption) *SessionService {
	s := &SessionService{
		db:    db,
		cache: noopSessionCache{},
		newCode: func() (string, error) {
			return security.GenerateCode(models.UniqueIDLength)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateSessionRequest struct {
	QuizID       uint   `json:"quiz_id" binding:"required"`
	UserName     string `json:"user_name" binding:"required,notblank"`
	LanguageCode string `json:"language_code" binding:"required,notblank"`
}

type CreatedSession struct {
	SessionID    uint   `json:"session_id"`
	UniqueID     string `json:"unique_id"`
	QuizTitle    string `json:"quiz_title"`
	UserName     string `json:"user_name"`
	LanguageCode string `json:"language_code"`
}

type SessionSummary struct {
	ID              uint      `json:"id"`
	QuizID          uint      `json:"quiz_id"`
	UniqueID        string    `json:"unique_id"`
	UserName        string    `json:"user_name"`
	LanguageCode    string    `json:"language_code"`
	CreatedAt       time.Time `json:"created_at"`
	QuizTitle       string    `json:"quiz_title"`
	QuizDescription string    `json:"quiz_description"`
}

type PlayOption struct {
	ID         uint    `json:"id"`
	OrderIndex int     `json:"order_index"`
	OptionText *string `json:"option_text"`
	MediaURL   *string `json:"media_url"`
	IsCorrect  bool    `json:"is_correct"`
}

type PlayQuestion struct {
	ID           uint         `json:"id"`
	QuestionType string       `json:"question_type"`
	OrderIndex   int          `json:"order_index"`
	QuestionText *string      `json:"question_text"`
	MediaURL     *string      `json:"media_url"`
	Explanation  *string      `json:"explanation"`
	Options      []PlayOption `json:"options"`
}

type SessionView struct {
	Session   SessionSummary `json:"session"`
	Questions []PlayQuestion `json:"questions"`
}

type SessionListItem struct {
	ID              uint      `json:"id"`
	QuizID          uint      `json:"quiz_id"`
	UniqueID        string    `json:"unique_id"`
	UserName        string    `json:"user_name"`
	LanguageCode    string    `json:"language_code"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	QuizTitle       *string   `json:"quiz_title"`
	QuizDescription *string   `json:"quiz_description"`
	FriendCount     int64     `json:"friend_count"`
}

// CreateSession starts a play of an active quiz and assigns it a fresh public id.
func (s *SessionService) CreateSession(ctx context.Context, req *CreateSessionRequest) (*CreatedSession, error) {
	userName := security.SanitizeName(req.UserName)
	languageCode := strings.TrimSpace(req.LanguageCode)
	if req.QuizID == 0 || userName == "" || languageCode == "" {
		return nil, apperrors.InvalidArgument("Quiz ID, user name, and language code are required")
	}

	db := s.db.WithContext(ctx)

	var quiz models.Quiz
	if err := db.Where("id = ? AND is_active = ?", req.QuizID, true).First(&quiz).Error; err != nil {
		return nil, lookupError(err, "Quiz not found or inactive")
	}

	ok, err := languageExists(db, languageCode, false)
	if err != nil {
		return nil, storageError(err, "check language")
	}
	if !ok {
		return nil, apperrors.InvalidArgument("Unknown language code")
	}

	for attempt := 1; attempt <= maxUniqueIDAttempts; attempt++ {
		uniqueID, err := s.newCode()
		if err != nil {
			return nil, apperrors.Internal(err, "Failed to generate session id")
		}

		// Check for collisions before inserting
		var taken int64
		if err := db.Model(&models.QuizSession{}).Where("unique_id = ?", uniqueID).Count(&taken).Error; err != nil {
			return nil, storageError(err, "check unique id")
		}
		if taken > 0 {
			logger.Warn("Session id collision, retrying", "attempt", attempt)
			continue
		}

		session := models.QuizSession{
			QuizID:       quiz.ID,
			UniqueID:     uniqueID,
			UserName:     userName,
			LanguageCode: languageCode,
			IsActive:     true,
		}
		if err := db.Create(&session).Error; err != nil {
			// Lost a race for the same id
			if database.IsDuplicateKey(err) {
				continue
			}
			return nil, storageError(err, "create session")
		}

		logger.Info("Quiz session created", "unique_id", session.UniqueID, "quiz_id", quiz.ID)
		return &CreatedSession{
			SessionID:    session.ID,
			UniqueID:     session.UniqueID,
			QuizTitle:    quiz.Title,
			UserName:     session.UserName,
			LanguageCode: session.LanguageCode,
		}, nil
	}

	return nil, apperrors.Internal(errors.New("unique id attempts exhausted"), "Failed to generate a unique session id")
}

// ResolveSession returns the active session for a public id, consulting the cache first.
func (s *SessionService) ResolveSession(ctx context.Context, uniqueID string) (*models.QuizSession, error) {
	uniqueID = NormalizeUniqueID(uniqueID)
	if uniqueID == "" {
		return nil, apperrors.NotFound("Session not found")
	}

	if session, ok := s.cache.Get(ctx, uniqueID); ok {
		return session, nil
	}

	// Shared loads outlive a cancelled caller
	loadCtx := context.WithoutCancel(ctx)
	result, err, _ := s.loads.Do(uniqueID, func() (interface{}, error) {
		ctx := loadCtx
		if session, ok := s.cache.Get(ctx, uniqueID); ok {
			return session, nil
		}

		var session models.QuizSession
		err := s.db.WithContext(ctx).
			Where("unique_id = ? AND is_active = ?", uniqueID, true).
			First(&session).Error
		if err != nil {
			return nil, lookupError(err, "Session not found")
		}
		s.cache.Set(ctx, &session)
		return &session, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers may share the singleflight result, hand each one its own copy
	session := *result.(*models.QuizSession)
	return &session, nil
}

// GetSession resolves the quiz questions and options in the session language.
// Missing translations stay null.
func (s *SessionService) GetSession(ctx context.Context, uniqueID string) (*SessionView, error) {
	session, err := s.ResolveSession(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var quiz models.Quiz
	if err := db.First(&quiz, session.QuizID).Error; err != nil {
		return nil, lookupError(err, "Quiz not found")
	}

	var questionRows []struct {
		ID           uint
		QuestionType string
		OrderIndex   int
		QuestionText *string
		MediaURL     *string
		Explanation  *string
	}
	err = db.Table("questions AS q").
		Select("q.id, q.question_type, q.order_index, qc.question_text, qc.media_url, qc.explanation").
		Joins("LEFT JOIN question_content qc ON qc.question_id = q.id AND qc.language_code = ?", session.LanguageCode).
		Where("q.quiz_id = ? AND q.is_active = ?", session.QuizID, true).
		Order("q.order_index, q.id").
		Scan(&questionRows).Error
	if err != nil {
		return nil, storageError(err, "load session questions")
	}

	questions := make([]PlayQuestion, 0, len(questionRows))
	index := make(map[uint]int, len(questionRows))
	ids := make([]uint, 0, len(questionRows))
	for i, row := range questionRows {
		questions = append(questions, PlayQuestion{
			ID:           row.ID,
			QuestionType: row.QuestionType,
			OrderIndex:   row.OrderIndex,
			QuestionText: row.QuestionText,
			MediaURL:     row.MediaURL,
			Explanation:  row.Explanation,
			Options:      []PlayOption{},
		})
		index[row.ID] = i
		ids = append(ids, row.ID)
	}

	if len(ids) > 0 {
		var optionRows []struct {
			ID         uint
			QuestionID uint
			OrderIndex int
			IsCorrect  bool
			OptionText *string
			MediaURL   *string
		}
		err = db.Table("options AS o").
			Select("o.id, o.question_id, o.order_index, o.is_correct, oc.option_text, oc.media_url").
			Joins("LEFT JOIN option_content oc ON oc.option_id = o.id AND oc.language_code = ?", session.LanguageCode).
			Where("o.question_id IN ? AND o.is_active = ?", ids, true).
			Order("o.question_id, o.order_index, o.id").
			Scan(&optionRows).Error
		if err != nil {
			return nil, storageError(err, "load session options")
		}
		for _, row := range optionRows {
			i := index[row.QuestionID]
			questions[i].Options = append(questions[i].Options, PlayOption{
				ID:         row.ID,
				OrderIndex: row.OrderIndex,
				OptionText: row.OptionText,
				MediaURL:   row.MediaURL,
				IsCorrect:  row.IsCorrect,
			})
		}
	}

	return &SessionView{
		Session: SessionSummary{
			ID:              session.ID,
			QuizID:          session.QuizID,
			UniqueID:        session.UniqueID,
			UserName:        session.UserName,
			LanguageCode:    session.LanguageCode,
			CreatedAt:       session.CreatedAt,
			QuizTitle:       quiz.Title,
			QuizDescription: quiz.Description,
		},
		Questions: questions,
	}, nil
}

// ListSessions returns every session, newest first, for the admin listing.
func (s *SessionService) ListSessions(ctx context.Context) ([]SessionListItem, error) {
	db := s.db.WithContext(ctx)

	var sessions []models.QuizSession
	if err := db.Order("created_at DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, storageError(err, "list sessions")
	}

	var quizzes []models.Quiz
	if err := db.Select("id", "title", "description").Find(&quizzes).Error; err != nil {
		return nil, storageError(err, "load quizzes")
	}
	byID := make(map[uint]models.Quiz, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
	}

	var counts []struct {
		SessionID uint
		Total     int64
	}
	if err := db.Model(&models.Friend{}).
		Select("session_id, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("session_id").
		Scan(&counts).Error; err != nil {
		return nil, storageError(err, "count friends")
	}
	friends := make(map[uint]int64, len(counts))
	for _, c := range counts {
		friends[c.SessionID] = c.Total
	}

	items := make([]SessionListItem, 0, len(sessions))
	for _, session := range sessions {
		item := SessionListItem{
			ID:           session.ID,
			QuizID:       session.QuizID,
			UniqueID:     session.UniqueID,
			UserName:     session.UserName,
			LanguageCode: session.LanguageCode,
			IsActive:     session.IsActive,
			CreatedAt:    session.CreatedAt,
			FriendCount:  friends[session.ID],
		}
		if quiz, ok := byID[session.QuizID]; ok {
			title, description := quiz.Title, quiz.Description
			item.QuizTitle = &title
			item.QuizDescription = &description
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *SessionService) DeactivateSession(ctx context.Context, uniqueID string) error {
	uniqueID = NormalizeUniqueID(uniqueID)
	result := s.db.WithContext(ctx).
		Model(&models.QuizSession{}).
		Where("unique_id = ? AND is_active = ?", uniqueID, true).
		Update("is_active", false)
	if result.Error != nil {
		return storageError(result.Error, "deactivate session")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Session not found")
	}

	s.cache.Delete(ctx, uniqueID)
	logger.Info("Quiz session deactivated", "unique_id", uniqueID)
	return nil
}

// NormalizeUniqueID trims and upper-cases a public session id.
func NormalizeUniqueID(uniqueID string) string {
	return strings.ToUpper(strings.TrimSpace(uniqueID))
}
