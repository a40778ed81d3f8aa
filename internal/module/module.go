package module

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scrummate/scrummate/internal/chatwindow"
	"github.com/scrummate/scrummate/internal/gateway"
	"github.com/scrummate/scrummate/internal/model"
	"github.com/scrummate/scrummate/internal/repository"
	"github.com/scrummate/scrummate/internal/session"
	"github.com/scrummate/scrummate/pkg/local"
)

// Module is one assistant surface: a static chat, a persona, its labels
// and its own controller + window pair.
type Module struct {
	Key        string
	Title      string
	ChatID     string
	Persona    gateway.Persona
	Controller *session.Controller
	Window     *chatwindow.Window
}

type definition struct {
	key          string
	chatID       string
	persona      gateway.Persona
	badge        string
	title        local.TextSet
	emptyLabel   local.TextSet
	loadingLabel local.TextSet
}

var definitions = []definition{
	{
		key:     "scrum-assistant",
		chatID:  "scrum-assistant-chat",
		persona: gateway.PersonaScrumRoles,
		badge:   "🧠",
		title: local.NewSet(
			"Asistente Scrum",
			local.NewTrans(local.Eng, "Scrum assistant"),
		),
		emptyLabel: local.NewSet(
			"🧠 Escribe algo para empezar tu conversación con el asistente Scrum.",
			local.NewTrans(local.Eng, "🧠 Write something to start your conversation with the Scrum assistant."),
		),
		loadingLabel: local.NewSet(
			"Escribiendo respuesta...",
			local.NewTrans(local.Eng, "Writing a reply..."),
		),
	},
	{
		key:     "meet-assistant",
		chatID:  "meet-chat",
		persona: gateway.PersonaCeremonies,
		badge:   "🤝",
		title: local.NewSet(
			"Asistente de ceremonias",
			local.NewTrans(local.Eng, "Ceremonies assistant"),
		),
		emptyLabel: local.NewSet(
			"🤝 Escribe algo para empezar tu conversación con el asistente de ceremonias Scrum.",
			local.NewTrans(local.Eng, "🤝 Write something to start your conversation with the Scrum ceremonies assistant."),
		),
		loadingLabel: local.NewSet(
			"Escribiendo respuesta...",
			local.NewTrans(local.Eng, "Writing a reply..."),
		),
	},
	{
		key:     "user-stories",
		chatID:  "user-stories-chat",
		persona: gateway.PersonaUserStories,
		badge:   "📘",
		title: local.NewSet(
			"Asistente de historias de usuario",
			local.NewTrans(local.Eng, "User stories assistant"),
		),
		emptyLabel: local.NewSet(
			"📘 Comienza preguntando sobre tus historias de usuario.",
			local.NewTrans(local.Eng, "📘 Start by asking about your user stories."),
		),
		loadingLabel: local.NewSet(
			"Redactando sugerencia...",
			local.NewTrans(local.Eng, "Drafting a suggestion..."),
		),
	},
	{
		key:     "good-practices",
		chatID:  "good-practices-chat",
		persona: gateway.PersonaGoodPractices,
		badge:   "🏅",
		title: local.NewSet(
			"Asistente de buenas prácticas",
			local.NewTrans(local.Eng, "Good practices assistant"),
		),
		emptyLabel: local.NewSet(
			"🏅 Escribe algo para empezar tu conversación con el asistente de buenas prácticas Scrum.",
			local.NewTrans(local.Eng, "🏅 Write something to start your conversation with the Scrum good practices assistant."),
		),
		loadingLabel: local.NewSet(
			"Escribiendo respuesta...",
			local.NewTrans(local.Eng, "Writing a reply..."),
		),
	},
}

var loadErrorLabel = local.NewSet(
	"No se pudieron cargar los mensajes. Por favor, recarga la página.",
	local.NewTrans(local.Eng, "Could not load the messages. Please reload the page."),
)

type Deps struct {
	Repo      *repository.Repository
	Responder session.Responder
	Language  local.Language
	Logger    zerolog.Logger
}

// BuildAll wires the four assistant modules, lazily creating each module's
// chat and loading its window.
func BuildAll(ctx context.Context, deps Deps) ([]*Module, error) {
	modules := make([]*Module, 0, len(definitions))
	for _, def := range definitions {
		if err := deps.Repo.EnsureChat(ctx, def.chatID, def.key); err != nil {
			return nil, fmt.Errorf("failed to ensure chat %s: %w", def.chatID, err)
		}

		controller := session.NewController(def.chatID, def.persona, deps.Repo, deps.Responder, deps.Logger)

		fetch := func(ctx context.Context, chatID string) ([]model.Message, error) {
			return deps.Repo.MessagesByChat(ctx, chatID)
		}
		window := chatwindow.New(
			fetch, chatwindow.Options{
				Renderer:     badgeRenderer(def.badge),
				EmptyLabel:   def.emptyLabel.Text(deps.Language),
				LoadingLabel: def.loadingLabel.Text(deps.Language),
				ErrorLabel:   loadErrorLabel.Text(deps.Language),
			}, deps.Logger,
		)
		window.SetChat(ctx, def.chatID)

		controller.OnRefresh(
			func() {
				window.Refresh(context.Background())
			},
		)

		modules = append(
			modules, &Module{
				Key:        def.key,
				Title:      def.title.Text(deps.Language),
				ChatID:     def.chatID,
				Persona:    def.persona,
				Controller: controller,
				Window:     window,
			},
		)
	}
	return modules, nil
}
