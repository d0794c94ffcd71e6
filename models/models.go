package models

// All lists every persisted model, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&AuthSession{},
		&Language{},
		&Page{},
		&ContentItem{},
		&Quiz{},
		&Question{},
		&QuestionContent{},
		&Option{},
		&OptionContent{},
		&QuizSession{},
		&Friend{},
		&Answer{},
	}
}
