package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"immoeliza/server/internal/models"
)

const defaultAPIBase = "https://api.telegram.org"

// Service sends cleaning run notifications to a Telegram chat
type Service struct {
	logger   *logrus.Logger
	client   *http.Client
	apiBase  string
	botToken string
	chatID   string
	enabled  bool
}

func NewService(botToken, chatID string, enabled bool, logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		enabled:  enabled,
	}
}

// Enabled reports whether notifications are switched on
func (s *Service) Enabled() bool {
	return s.enabled
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.enabled {
		return nil
	}

	if s.botToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.chatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	payload := map[string]interface{}{
		"chat_id":    s.chatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyRunCompleted sends a summary of a finished cleaning run
func (s *Service) NotifyRunCompleted(report *models.RunReport) error {
	if !s.enabled {
		return nil
	}

	message := fmt.Sprintf(
		"<b>Cleaning run completed</b>\n\n"+
			"📥 Rows in: %d\n"+
			"📤 Rows out: %d\n"+
			"♻️ Duplicates dropped: %d\n"+
			"🗺 Missing province: %d\n"+
			"💰 Price outliers: %d\n"+
			"📐 Living area outliers: %d\n"+
			"🗑 Incomplete rows dropped: %d\n"+
			"⏱ Duration: %s\n\n"+
			"📄 Output: %s",
		report.RowsIn,
		report.RowsOut,
		report.DuplicatesDropped,
		report.MissingProvinceDropped,
		report.PriceOutliers,
		report.LivingAreaOutliers,
		report.IncompleteRowsDropped,
		report.Duration().Round(time.Millisecond),
		report.OutputPath,
	)

	return s.SendMessage(message)
}

// NotifyRunFailed reports a cleaning run that did not produce output
func (s *Service) NotifyRunFailed(inputPath string, runErr error) error {
	if !s.enabled {
		return nil
	}

	message := fmt.Sprintf(
		"<b>⚠️ Cleaning run failed</b>\n\n"+
			"📄 Input: %s\n"+
			"❌ %s",
		inputPath,
		runErr,
	)

	return s.SendMessage(message)
}
