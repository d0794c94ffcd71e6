package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestScoresWorkbook(t *testing.T) {
	board := &Scoreboard{
		Session: ScoreboardSession{UniqueID: "ABCD1234", UserName: "Host", QuizTitle: "Capitals"},
		Friends: []FriendScore{
			{FriendName: "Alice", TotalAnswers: 3, CorrectAnswers: 2, ScorePercentage: 66.67},
			{FriendName: "Bob", TotalAnswers: 0, CorrectAnswers: 0, ScorePercentage: 0},
		},
	}

	data, err := ScoresWorkbook(board)
	if err != nil {
		t.Fatalf("render workbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != scoresSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	title, err := f.GetCellValue(scoresSheet, "A1")
	if err != nil {
		t.Fatalf("read title: %v", err)
	}
	if !strings.Contains(title, "Capitals") || !strings.Contains(title, "ABCD1234") {
		t.Fatalf("unexpected title %q", title)
	}

	expect := map[string]string{
		"A3": "Rank",
		"B3": "Friend",
		"A4": "1",
		"B4": "Alice",
		"C4": "3",
		"D4": "2",
		"E4": "66.67",
		"B5": "Bob",
		"E5": "0",
	}
	for cell, want := range expect {
		got, err := f.GetCellValue(scoresSheet, cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("cell %s: expected %q, got %q", cell, want, got)
		}
	}
}

func TestExportScores(t *testing.T) {
	f := newGameFixture(t)
	f.addFriend(t, "Alice")
	f.answer(t, "Alice", f.quiz.QuestionID, f.quiz.Paris)

	data, board, err := f.participation.ExportScores(context.Background(), f.uniqueID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected workbook bytes")
	}
	if board.Session.UniqueID != f.uniqueID || len(board.Friends) != 1 {
		t.Fatalf("unexpected scoreboard: %+v", board)
	}

	_, _, err = f.participation.ExportScores(context.Background(), "MISSING0")
	if err == nil {
		t.Fatalf("expected error for unknown session")
	}
}
