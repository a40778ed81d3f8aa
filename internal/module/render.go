package module

import (
	"fmt"

	"github.com/scrummate/scrummate/internal/chatwindow"
	"github.com/scrummate/scrummate/internal/model"
)

// Each module styles its bubbles with its own badge.
func badgeRenderer(badge string) chatwindow.Renderer {
	return chatwindow.RendererFunc(func(msg model.Message) string {
		if msg.Sender == model.SenderUser {
			return fmt.Sprintf("[%s] tú: %s", msg.Timestamp, msg.Text)
		}
		return fmt.Sprintf("[%s] %s asistente: %s", msg.Timestamp, badge, msg.Text)
	})
}
