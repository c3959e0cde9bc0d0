// Package sheets mirrors application rows to a Google spreadsheet. The
// mirror is strictly best-effort: every method degrades to a logged no-op
// when the client is unconfigured or the API call fails, and the core
// workflow never depends on its success.
package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"w3bbot/internal/models"
)

var headers = []interface{}{
	"ID", "Telegram ID", "Username", "Имя", "Фамилия", "Телефон", "Возраст",
	"Род деятельности", "Тема", "Источник", "Язык", "Подписан", "Правила",
	"Статус", "Дата",
}

type Client struct {
	srv           *sheets.Service
	spreadsheetID string
	log           *zap.Logger
}

// New builds a sheets client from service-account credentials JSON. Empty
// credentials or spreadsheet id yield a disabled client whose methods no-op.
func New(ctx context.Context, credentialsJSON, spreadsheetID string, log *zap.Logger) (*Client, error) {
	c := &Client{spreadsheetID: spreadsheetID, log: log}
	if credentialsJSON == "" || spreadsheetID == "" {
		log.Warn("google sheets credentials not configured, mirroring disabled")
		return c, nil
	}

	srv, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	c.srv = srv
	return c, nil
}

func (c *Client) enabled() bool { return c != nil && c.srv != nil }

// EnsureHeaders writes the header row if the sheet is empty.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, "A1:O1").Context(ctx).Do()
	if err != nil {
		return err
	}
	if len(resp.Values) > 0 {
		return nil
	}
	_, err = c.srv.Spreadsheets.Values.Update(c.spreadsheetID, "A1:O1", &sheets.ValueRange{
		Values: [][]interface{}{headers},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

// RecordApplication appends the application as a new row after the current
// last row of column A.
func (c *Client) RecordApplication(ctx context.Context, app *models.Application) error {
	if !c.enabled() {
		return nil
	}

	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, "A:A").Context(ctx).Do()
	if err != nil {
		return err
	}
	next := len(resp.Values) + 1

	row := []interface{}{
		app.ID,
		app.TelegramID,
		app.Username,
		app.FirstName,
		app.LastName,
		app.PhoneNumber,
		app.Age,
		app.Occupation,
		app.InterestTopic,
		app.Source,
		app.Language,
		subscribedLabel(app.SubscribedToChannel),
		yesNo(app.RulesAgreed),
		string(app.Status),
		time.Now().Format("02.01.2006 15:04:05"),
	}

	rng := fmt.Sprintf("A%d:O%d", next, next)
	_, err = c.srv.Spreadsheets.Values.Append(c.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return err
	}
	c.log.Info("application mirrored to sheets", zap.Uint("id", app.ID), zap.Int("row", next))
	return nil
}

// RecordStatusChange finds the row holding the application id in column A
// and rewrites the status cell in column N.
func (c *Client) RecordStatusChange(ctx context.Context, id uint, status models.ApplicationStatus) error {
	if !c.enabled() {
		return nil
	}

	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, "A:O").Context(ctx).Do()
	if err != nil {
		return err
	}

	want := fmt.Sprintf("%d", id)
	for i, row := range resp.Values {
		if len(row) == 0 || fmt.Sprintf("%v", row[0]) != want {
			continue
		}
		rng := fmt.Sprintf("N%d", i+1)
		_, err = c.srv.Spreadsheets.Values.Update(c.spreadsheetID, rng, &sheets.ValueRange{
			Values: [][]interface{}{{string(status)}},
		}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	}
	return nil
}

func subscribedLabel(v *bool) string {
	switch {
	case v == nil:
		return "Неизвестно"
	case *v:
		return "Да"
	default:
		return "Нет"
	}
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}
