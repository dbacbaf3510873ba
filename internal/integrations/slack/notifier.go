package slacknotify

import (
	"bytes"
	"fmt"

	"github.com/slack-go/slack"
)

// Notifier delivers report chunks and chart images to a Slack channel.
type Notifier struct {
	api       *slack.Client
	channelID string
}

func New(botToken, channelID string) *Notifier {
	return &Notifier{
		api:       slack.New(botToken),
		channelID: channelID,
	}
}

func (n *Notifier) DeliverText(content string) error {
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(content, false))
	if err != nil {
		return fmt.Errorf("posting message: %w", err)
	}
	return nil
}

func (n *Notifier) DeliverImage(png []byte, caption string) error {
	_, err := n.api.UploadFileV2(slack.UploadFileV2Parameters{
		Reader:         bytes.NewReader(png),
		FileSize:       len(png),
		Filename:       "chart.png",
		Channel:        n.channelID,
		InitialComment: caption,
	})
	if err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}
	return nil
}
