package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func questionKeyboard(questionID int, showHint bool) *tgbotapi.InlineKeyboardMarkup {
	if !showHint {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Hint", buildHintCallback(questionID)),
		),
	)
	return &kb
}

// resultKeyboard offers the worked solution after a wrong answer and a way to continue.
func resultKeyboard(questionID int, correct bool, subject, focusTopic string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if !correct && questionID > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("📖 Solution", buildSolutionCallback(questionID)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️ Next", buildNextCallback(subject, focusTopic)))
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
