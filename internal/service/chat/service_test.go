package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lejockey/concierge/backend/internal/i18n"
	chatmodel "github.com/lejockey/concierge/backend/internal/model/chat"
	chat "github.com/lejockey/concierge/backend/internal/service/chat"
)

func TestServiceCreateSessionGreets(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, greeting, err := svc.CreateSession(ctx, i18n.English)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if session.Language != i18n.English {
		t.Fatalf("unexpected language %q", session.Language)
	}
	if greeting.Role != chatmodel.RoleModel || greeting.Text != "Hi! I'm your virtual bartender. \n\nI can suggest cocktails, share recipes, or call a cab.\n\nWhat are you in the mood for?" {
		t.Fatalf("unexpected greeting %+v", greeting)
	}

	transcript, err := svc.LoadTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(transcript) != 1 || transcript[0].ID != greeting.ID {
		t.Fatalf("transcript should start with the greeting, got %+v", transcript)
	}
}

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _, err := svc.CreateSession(ctx, i18n.French)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}

	if _, err := svc.SetLanguage(ctx, session.ID, i18n.English); err != nil {
		t.Fatalf("SetLanguage err: %v", err)
	}
	if got, _ := svc.GetSession(ctx, session.ID); got.Language != i18n.English {
		t.Fatalf("language not updated: %q", got.Language)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.SaveMessage(ctx, chatmodel.Message{SessionID: "missing", Role: chatmodel.RoleUser, Text: "hi"}); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceKeepsOptionsOnLatestModelMessage(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _, _ := svc.CreateSession(ctx, i18n.French)

	save := func(role chatmodel.Role, text string, options ...string) {
		t.Helper()
		if _, err := svc.SaveMessage(ctx, chatmodel.Message{SessionID: session.ID, Role: role, Text: text, Options: options}); err != nil {
			t.Fatalf("SaveMessage err: %v", err)
		}
	}
	save(chatmodel.RoleUser, "Une suggestion ?")
	save(chatmodel.RoleModel, "Le Negroni !", "Par Alcool", "Par Saveur")
	save(chatmodel.RoleUser, "Par Alcool")
	save(chatmodel.RoleModel, "Quel alcool ?", "Gin", "Rhum")
	save(chatmodel.RoleUser, "Gin")

	transcript, err := svc.LoadTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(transcript) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(transcript))
	}
	if transcript[2].Options != nil {
		t.Fatalf("stale options should be hidden, got %v", transcript[2].Options)
	}
	if len(transcript[4].Options) != 2 {
		t.Fatalf("latest model options should be kept, got %v", transcript[4].Options)
	}
}

func TestServiceRejectsEmptyUserMessage(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _, _ := svc.CreateSession(ctx, i18n.French)

	if _, err := svc.SaveMessage(ctx, chatmodel.Message{SessionID: session.ID, Role: chatmodel.RoleUser, Text: "   "}); !errors.Is(err, chat.ErrMessageEmpty) {
		t.Fatalf("expected ErrMessageEmpty, got %v", err)
	}
}
