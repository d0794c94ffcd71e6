package services

import (
	"context"
	"time"

	"quizpanel/database"
	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"
	"quizpanel/pkg/logger"
	"quizpanel/pkg/security"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParticipationService records friends and their answers against a session.
type ParticipationService struct {
	db       *gorm.DB
	sessions *SessionService
	now      func() time.Time
}

func NewParticipationService(db *gorm.DB, sessions *SessionService) *ParticipationService {
	return &ParticipationService{
		db:       db,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type AddFriendRequest struct {
	UniqueID   string `json:"unique_id" binding:"required,notblank"`
	FriendName string `json:"friend_name" binding:"required,notblank"`
}

type SaveAnswerRequest struct {
	UniqueID         string `json:"unique_id" binding:"required,notblank"`
	FriendName       string `json:"friend_name" binding:"required,notblank"`
	QuestionID       uint   `json:"question_id" binding:"required"`
	SelectedOptionID uint   `json:"selected_option_id" binding:"required"`
}

type AnswerResult struct {
	IsCorrect bool `json:"is_correct"`
}

type ScoreboardSession struct {
	UniqueID  string `json:"unique_id"`
	UserName  string `json:"user_name"`
	QuizTitle string `json:"quiz_title"`
}

type Scoreboard struct {
	Session ScoreboardSession `json:"session"`
	Friends []FriendScore     `json:"friends"`
}

type CorrectOption struct {
	ID         uint    `json:"id"`
	OptionText *string `json:"option_text"`
	MediaURL   *string `json:"media_url"`
}

type FriendAnswer struct {
	QuestionID          uint            `json:"question_id"`
	QuestionType        string          `json:"question_type"`
	QuestionText        *string         `json:"question_text"`
	QuestionMedia       *string         `json:"question_media"`
	Explanation         *string         `json:"explanation"`
	SelectedOptionID    uint            `json:"selected_option_id"`
	SelectedOptionText  *string         `json:"selected_option_text"`
	SelectedOptionMedia *string         `json:"selected_option_media"`
	IsCorrect           bool            `json:"is_correct"`
	AnsweredAt          time.Time       `json:"answered_at"`
	CorrectOptions      []CorrectOption `json:"correct_options"`
}

type FriendAnswersSession struct {
	UniqueID string `json:"unique_id"`
	UserName string `json:"user_name"`
}

type FriendAnswers struct {
	Session    FriendAnswersSession `json:"session"`
	FriendName string               `json:"friend_name"`
	Answers    []FriendAnswer       `json:"answers"`
}

type FriendEntry struct {
	FriendName string    `json:"friend_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type FriendList struct {
	Session ScoreboardSession `json:"session"`
	Friends []FriendEntry     `json:"friends"`
}

// AddFriend registers a participant name in an active session.
func (s *ParticipationService) AddFriend(ctx context.Context, uniqueID, friendName string) (*models.Friend, error) {
	name := security.SanitizeName(friendName)
	if name == "" {
		return nil, apperrors.InvalidArgument("Unique ID and friend name are required")
	}

	session, err := s.sessions.ResolveSession(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.Friend{}).
		Where("session_id = ? AND friend_name = ? AND is_active = ?", session.ID, name, true).
		Count(&existing).Error; err != nil {
		return nil, storageError(err, "check friend")
	}
	if existing > 0 {
		return nil, apperrors.Conflict("Friend name already exists in this session")
	}

	friend := models.Friend{
		SessionID:  session.ID,
		FriendName: name,
		IsActive:   true,
	}
	if err := db.Create(&friend).Error; err != nil {
		// Concurrent add of the same name hits the partial unique index
		if database.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("Friend name already exists in this session")
		}
		return nil, storageError(err, "add friend")
	}

	logger.Info("Friend joined session", "unique_id", session.UniqueID, "friend_name", name)
	return &friend, nil
}

// SaveAnswer records the friend's choice for a question, replacing any earlier one.
// Correctness is captured from the option as it is right now.
func (s *ParticipationService) SaveAnswer(ctx context.Context, req *SaveAnswerRequest) (*AnswerResult, error) {
	name := security.SanitizeName(req.FriendName)
	if name == "" || req.QuestionID == 0 || req.SelectedOptionID == 0 {
		return nil, apperrors.InvalidArgument("All fields are required")
	}

	session, err := s.sessions.ResolveSession(ctx, req.UniqueID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	if err := s.requireActiveFriend(db, session.ID, name); err != nil {
		return nil, err
	}

	var question models.Question
	if err := db.Select("id").
		Where("id = ? AND quiz_id = ?", req.QuestionID, session.QuizID).
		First(&question).Error; err != nil {
		return nil, lookupError(err, "Question not found in this quiz")
	}

	var option models.Option
	if err := db.Where("id = ? AND question_id = ?", req.SelectedOptionID, req.QuestionID).
		First(&option).Error; err != nil {
		return nil, lookupError(err, "Option not found")
	}

	answer := models.Answer{
		SessionID:        session.ID,
		FriendName:       name,
		QuestionID:       req.QuestionID,
		SelectedOptionID: option.ID,
		IsCorrect:        option.IsCorrect,
		AnsweredAt:       s.now(),
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "friend_name"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "is_correct", "answered_at"}),
	}).Create(&answer).Error
	if err != nil {
		return nil, storageError(err, "save answer")
	}

	logger.Debug("Answer saved", "unique_id", session.UniqueID, "friend_name", name,
		"question_id", req.QuestionID, "is_correct", option.IsCorrect)
	return &AnswerResult{IsCorrect: option.IsCorrect}, nil
}

// GetFriendsScores aggregates every active friend's answers, including friends with none.
func (s *ParticipationService) GetFriendsScores(ctx context.Context, uniqueID string) (*Scoreboard, error) {
	session, err := s.sessions.ResolveSession(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	summary, err := scoreboardSession(db, session)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		FriendName     string
		TotalAnswers   int64
		CorrectAnswers int64
	}
	err = db.Table("quiz_friends AS f").
		Select("f.friend_name, COUNT(a.id) AS total_answers, "+
			"COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0) AS correct_answers").
		Joins("LEFT JOIN user_answers a ON a.session_id = f.session_id AND a.friend_name = f.friend_name").
		Where("f.session_id = ? AND f.is_active = ?", session.ID, true).
		Group("f.id, f.friend_name").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError(err, "aggregate scores")
	}

	friends := make([]FriendScore, 0, len(rows))
	for _, row := range rows {
		friends = append(friends, FriendScore{
			FriendName:      row.FriendName,
			TotalAnswers:    row.TotalAnswers,
			CorrectAnswers:  row.CorrectAnswers,
			ScorePercentage: ScorePercentage(row.CorrectAnswers, row.TotalAnswers),
		})
	}
	rankFriends(friends)

	return &Scoreboard{Session: summary, Friends: friends}, nil
}

// GetFriendAnswers lists the answered questions of one friend in the session language.
func (s *ParticipationService) GetFriendAnswers(ctx context.Context, uniqueID, friendName string) (*FriendAnswers, error) {
	session, err := s.sessions.ResolveSession(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	name := security.SanitizeName(friendName)

	db := s.db.WithContext(ctx)

	var rows []struct {
		QuestionID          uint
		QuestionType        string
		QuestionText        *string
		QuestionMedia       *string
		Explanation         *string
		SelectedOptionID    uint
		SelectedOptionText  *string
		SelectedOptionMedia *string
		IsCorrect           bool
		AnsweredAt          time.Time
	}
	err = db.Table("user_answers AS a").
		Select("a.question_id, q.question_type, qc.question_text, qc.media_url AS question_media, "+
			"qc.explanation, a.selected_option_id, oc.option_text AS selected_option_text, "+
			"oc.media_url AS selected_option_media, a.is_correct, a.answered_at").
		Joins("JOIN questions q ON q.id = a.question_id").
		Joins("LEFT JOIN question_content qc ON qc.question_id = q.id AND qc.language_code = ?", session.LanguageCode).
		Joins("LEFT JOIN option_content oc ON oc.option_id = a.selected_option_id AND oc.language_code = ?", session.LanguageCode).
		Where("a.session_id = ? AND a.friend_name = ?", session.ID, name).
		Order("q.order_index, q.id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError(err, "load friend answers")
	}

	answers := make([]FriendAnswer, 0, len(rows))
	index := make(map[uint]int, len(rows))
	questionIDs := make([]uint, 0, len(rows))
	for i, row := range rows {
		answers = append(answers, FriendAnswer{
			QuestionID:          row.QuestionID,
			QuestionType:        row.QuestionType,
			QuestionText:        row.QuestionText,
			QuestionMedia:       row.QuestionMedia,
			Explanation:         row.Explanation,
			SelectedOptionID:    row.SelectedOptionID,
			SelectedOptionText:  row.SelectedOptionText,
			SelectedOptionMedia: row.SelectedOptionMedia,
			IsCorrect:           row.IsCorrect,
			AnsweredAt:          row.AnsweredAt,
			CorrectOptions:      []CorrectOption{},
		})
		index[row.QuestionID] = i
		questionIDs = append(questionIDs, row.QuestionID)
	}

	if len(questionIDs) > 0 {
		var correct []struct {
			ID         uint
			QuestionID uint
			OptionText *string
			MediaURL   *string
		}
		err = db.Table("options AS o").
			Select("o.id, o.question_id, oc.option_text, oc.media_url").
			Joins("LEFT JOIN option_content oc ON oc.option_id = o.id AND oc.language_code = ?", session.LanguageCode).
			Where("o.question_id IN ? AND o.is_correct = ?", questionIDs, true).
			Order("o.question_id, o.order_index, o.id").
			Scan(&correct).Error
		if err != nil {
			return nil, storageError(err, "load correct options")
		}
		for _, c := range correct {
			i := index[c.QuestionID]
			answers[i].CorrectOptions = append(answers[i].CorrectOptions, CorrectOption{
				ID:         c.ID,
				OptionText: c.OptionText,
				MediaURL:   c.MediaURL,
			})
		}
	}

	return &FriendAnswers{
		Session:    FriendAnswersSession{UniqueID: session.UniqueID, UserName: session.UserName},
		FriendName: name,
		Answers:    answers,
	}, nil
}

// ListFriends returns active friends in join order.
func (s *ParticipationService) ListFriends(ctx context.Context, uniqueID string) (*FriendList, error) {
	session, err := s.sessions.ResolveSession(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	summary, err := scoreboardSession(db, session)
	if err != nil {
		return nil, err
	}

	var friends []models.Friend
	if err := db.Where("session_id = ? AND is_active = ?", session.ID, true).
		Order("created_at, id").
		Find(&friends).Error; err != nil {
		return nil, storageError(err, "list friends")
	}

	entries := make([]FriendEntry, 0, len(friends))
	for _, f := range friends {
		entries = append(entries, FriendEntry{FriendName: f.FriendName, CreatedAt: f.CreatedAt})
	}
	return &FriendList{Session: summary, Friends: entries}, nil
}

// RemoveFriend deactivates an active friend so the name can join again.
// Earlier answers stay stored.
func (s *ParticipationService) RemoveFriend(ctx context.Context, uniqueID, friendName string) error {
	session, err := s.sessions.ResolveSession(ctx, uniqueID)
	if err != nil {
		return err
	}
	name := security.SanitizeName(friendName)

	result := s.db.WithContext(ctx).
		Model(&models.Friend{}).
		Where("session_id = ? AND friend_name = ? AND is_active = ?", session.ID, name, true).
		Update("is_active", false)
	if result.Error != nil {
		return storageError(result.Error, "remove friend")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Friend not found in this session")
	}

	logger.Info("Friend removed from session", "unique_id", session.UniqueID, "friend_name", name)
	return nil
}

func (s *ParticipationService) requireActiveFriend(db *gorm.DB, sessionID uint, name string) error {
	var count int64
	if err := db.Model(&models.Friend{}).
		Where("session_id = ? AND friend_name = ? AND is_active = ?", sessionID, name, true).
		Count(&count).Error; err != nil {
		return storageError(err, "check friend")
	}
	if count == 0 {
		return apperrors.NotFound("Friend not found in this session")
	}
	return nil
}

func scoreboardSession(db *gorm.DB, session *models.QuizSession) (ScoreboardSession, error) {
	summary := ScoreboardSession{UniqueID: session.UniqueID, UserName: session.UserName}

	var quiz models.Quiz
	if err := db.Select("id", "title").First(&quiz, session.QuizID).Error; err != nil {
		return summary, lookupError(err, "Quiz not found")
	}
	summary.QuizTitle = quiz.Title
	return summary, nil
}
