package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"
	"quizpanel/pkg/security"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCreateSession(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	svc := NewSessionService(db)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "  Host ", LanguageCode: "en"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !security.IsCode(created.UniqueID, models.UniqueIDLength) {
		t.Fatalf("unexpected unique id %q", created.UniqueID)
	}
	if created.QuizTitle != "Capitals" || created.UserName != "Host" || created.LanguageCode != "en" {
		t.Fatalf("unexpected session payload: %+v", created)
	}

	cases := []struct {
		name string
		req  CreateSessionRequest
		code string
	}{
		{"missing quiz", CreateSessionRequest{UserName: "Host", LanguageCode: "en"}, apperrors.ErrCodeInvalidArgument},
		{"blank user", CreateSessionRequest{QuizID: quiz.QuizID, UserName: "   ", LanguageCode: "en"}, apperrors.ErrCodeInvalidArgument},
		{"blank language", CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host"}, apperrors.ErrCodeInvalidArgument},
		{"unknown language", CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "xx"}, apperrors.ErrCodeInvalidArgument},
		{"unknown quiz", CreateSessionRequest{QuizID: 9999, UserName: "Host", LanguageCode: "en"}, apperrors.ErrCodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := svc.CreateSession(ctx, &req)
			expectCode(t, err, tc.code)
		})
	}
}

func TestCreateSessionRejectsInactiveQuiz(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	inactive := false
	if _, err := NewQuizService(db).UpdateQuiz(context.Background(), quiz.QuizID, &UpdateQuizRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate quiz: %v", err)
	}

	_, err := NewSessionService(db).CreateSession(context.Background(), &CreateSessionRequest{
		QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "en",
	})
	expectCode(t, err, apperrors.ErrCodeNotFound)
}

func TestCreateSessionRetriesOnCollision(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	ctx := context.Background()

	codes := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	calls := 0
	svc := NewSessionService(db, WithCodeGenerator(func() (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}))

	req := &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "en"}
	first, err := svc.CreateSession(ctx, req)
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	second, err := svc.CreateSession(ctx, req)
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if first.UniqueID != "AAAAAAAA" || second.UniqueID != "BBBBBBBB" {
		t.Fatalf("unexpected ids %q and %q", first.UniqueID, second.UniqueID)
	}
	if calls != 3 {
		t.Fatalf("expected 3 generator calls, got %d", calls)
	}
}

func TestCreateSessionGivesUpAfterRepeatedCollisions(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	ctx := context.Background()

	svc := NewSessionService(db, WithCodeGenerator(func() (string, error) { return "SAMECODE", nil }))
	req := &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "en"}
	if _, err := svc.CreateSession(ctx, req); err != nil {
		t.Fatalf("first session: %v", err)
	}
	_, err := svc.CreateSession(ctx, req)
	expectCode(t, err, apperrors.ErrCodeInternalError)

	failing := NewSessionService(db, WithCodeGenerator(func() (string, error) { return "", errors.New("entropy") }))
	_, err = failing.CreateSession(ctx, req)
	expectCode(t, err, apperrors.ErrCodeInternalError)
}

func TestGetSessionResolvesSessionLanguage(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	ctx := context.Background()

	// A french translation of the question but none of the options
	explanation := "Paris est la capitale."
	detail, err := NewQuestionService(db).UpdateQuestion(ctx, quiz.QuestionID, &UpdateQuestionRequest{
		Content: []QuestionContentInput{
			{LanguageCode: "en", QuestionText: "Capital of France?"},
			{LanguageCode: "fr", QuestionText: "Capitale de la France ?", Explanation: &explanation},
		},
	})
	if err != nil {
		t.Fatalf("add translation: %v", err)
	}
	if len(detail.Content) != 2 {
		t.Fatalf("expected 2 translations, got %d", len(detail.Content))
	}

	svc := NewSessionService(db)
	fr, err := svc.CreateSession(ctx, &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Hôte", LanguageCode: "fr"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	view, err := svc.GetSession(ctx, fr.UniqueID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if view.Session.QuizTitle != "Capitals" || view.Session.LanguageCode != "fr" {
		t.Fatalf("unexpected summary: %+v", view.Session)
	}
	if len(view.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(view.Questions))
	}
	q := view.Questions[0]
	if q.QuestionText == nil || *q.QuestionText != "Capitale de la France ?" {
		t.Fatalf("expected french question text, got %v", q.QuestionText)
	}
	if q.Explanation == nil || *q.Explanation != explanation {
		t.Fatalf("expected french explanation, got %v", q.Explanation)
	}
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.Options))
	}
	for i, o := range q.Options {
		if o.OptionText != nil {
			t.Fatalf("option %d should have no french text, got %q", i, *o.OptionText)
		}
		if o.OrderIndex != i+1 {
			t.Fatalf("option %d has order_index %d", i, o.OrderIndex)
		}
	}
	if !q.Options[0].IsCorrect {
		t.Fatalf("expected first option to be correct")
	}

	// Lookups are case-insensitive on the public id
	if _, err := svc.GetSession(ctx, "  "+strings.ToLower(fr.UniqueID)+" "); err != nil {
		t.Fatalf("lowercase lookup: %v", err)
	}
	_, err = svc.GetSession(ctx, "NOPE0000")
	expectCode(t, err, apperrors.ErrCodeNotFound)
}

func TestGetSessionSkipsInactiveQuestions(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	hidden, _, _ := addQuestion(t, db, quiz.QuizID, 2, "Hidden?")
	ctx := context.Background()

	inactive := false
	if _, err := NewQuestionService(db).UpdateQuestion(ctx, hidden, &UpdateQuestionRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate question: %v", err)
	}

	svc := NewSessionService(db)
	created, err := svc.CreateSession(ctx, &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "en"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	view, err := svc.GetSession(ctx, created.UniqueID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(view.Questions) != 1 || view.Questions[0].ID != quiz.QuestionID {
		t.Fatalf("expected only the active question, got %+v", view.Questions)
	}
}

func TestListAndDeactivateSessions(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	ctx := context.Background()
	svc := NewSessionService(db)
	participation := NewParticipationService(db, svc)

	created, err := svc.CreateSession(ctx, &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "en"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := participation.AddFriend(ctx, created.UniqueID, "Alice"); err != nil {
		t.Fatalf("add friend: %v", err)
	}

	items, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 session, got %d", len(items))
	}
	if items[0].QuizTitle == nil || *items[0].QuizTitle != "Capitals" || items[0].FriendCount != 1 {
		t.Fatalf("unexpected list item: %+v", items[0])
	}

	if err := svc.DeactivateSession(ctx, created.UniqueID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = svc.GetSession(ctx, created.UniqueID)
	expectCode(t, err, apperrors.ErrCodeNotFound)
	expectCode(t, svc.DeactivateSession(ctx, created.UniqueID), apperrors.ErrCodeNotFound)
}

func TestResolveSessionUsesRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	svc := NewSessionService(db, WithSessionCache(NewRedisSessionCache(client, time.Minute)))

	created, err := svc.CreateSession(ctx, &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "en"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	key := "quiz_session:" + created.UniqueID
	if mr.Exists(key) {
		t.Fatalf("cache should be filled lazily")
	}

	session, err := svc.ResolveSession(ctx, created.UniqueID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if session.ID != created.SessionID {
		t.Fatalf("expected session %d, got %d", created.SessionID, session.ID)
	}
	if !mr.Exists(key) {
		t.Fatalf("expected %s to be cached", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	cached, ok := NewRedisSessionCache(client, time.Minute).Get(ctx, created.UniqueID)
	if !ok || cached.UniqueID != created.UniqueID || cached.QuizID != quiz.QuizID {
		t.Fatalf("unexpected cached session: %+v", cached)
	}

	if err := svc.DeactivateSession(ctx, created.UniqueID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("expected cache entry to be deleted on deactivate")
	}
	_, err = svc.ResolveSession(ctx, created.UniqueID)
	expectCode(t, err, apperrors.ErrCodeNotFound)
}

func TestRedisSessionCacheDropsCorruptEntries(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewRedisSessionCache(client, time.Minute)

	if err := mr.Set("quiz_session:BROKEN00", "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	if _, ok := cache.Get(context.Background(), "BROKEN00"); ok {
		t.Fatalf("corrupt entry should be a miss")
	}
	if mr.Exists("quiz_session:BROKEN00") {
		t.Fatalf("corrupt entry should be removed")
	}
}

func TestResolveSessionIgnoresCallerCancellation(t *testing.T) {
	db := newTestDB(t)
	seedLanguages(t, db)
	quiz := createCapitalsQuiz(t, db)
	svc := NewSessionService(db)

	created, err := svc.CreateSession(context.Background(), &CreateSessionRequest{QuizID: quiz.QuizID, UserName: "Host", LanguageCode: "en"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Whoever triggers a shared load may already be gone
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session, err := svc.ResolveSession(ctx, created.UniqueID)
	if err != nil {
		t.Fatalf("resolve with cancelled caller: %v", err)
	}
	if session.ID != created.SessionID {
		t.Fatalf("unexpected session %+v", session)
	}

	_, err = svc.ResolveSession(ctx, "MISSING0")
	expectCode(t, err, apperrors.ErrCodeNotFound)
}
