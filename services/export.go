package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const scoresSheet = "Scores"

var scoresHeader = []interface{}{"Rank", "Friend", "Total Answers", "Correct Answers", "Score (%)"}

// ExportScores renders the session scoreboard as an xlsx workbook.
func (s *ParticipationService) ExportScores(ctx context.Context, uniqueID string) ([]byte, *Scoreboard, error) {
	board, err := s.GetFriendsScores(ctx, uniqueID)
	if err != nil {
		return nil, nil, err
	}
	data, err := ScoresWorkbook(board)
	if err != nil {
		return nil, nil, storageError(err, "render scores workbook")
	}
	return data, board, nil
}

// ScoresWorkbook writes a title row, a header row and one row per friend.
func ScoresWorkbook(board *Scoreboard) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scoresSheet); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s (%s, hosted by %s)", board.Session.QuizTitle, board.Session.UniqueID, board.Session.UserName)
	if err := f.SetCellValue(scoresSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(scoresSheet, "A3", &scoresHeader); err != nil {
		return nil, err
	}

	for i, friend := range board.Friends {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		row := []interface{}{i + 1, friend.FriendName, friend.TotalAnswers, friend.CorrectAnswers, friend.ScorePercentage}
		if err := f.SetSheetRow(scoresSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(scoresSheet, "B", "B", 24); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
