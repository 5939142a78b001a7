package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/easycodehow/spark/internal/memos"
	"github.com/easycodehow/spark/internal/storage"
)

// MemoStore is the part of memos.Store the dispatcher needs.
type MemoStore interface {
	Create(ctx context.Context, content string, important bool) (*memos.Memo, error)
	Update(ctx context.Context, id int64, content string, important bool) (*memos.Memo, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ImportMerge(ctx context.Context, candidates []memos.Memo) (int, error)
	Get(id int64) (*memos.Memo, bool)
	All() []memos.Memo
}

// User-facing messages.
const (
	MsgEmptyContent   = "Please enter memo content."
	MsgConfirmDelete  = "Delete this memo?"
	MsgShareMissing   = "Sharing is not supported on this device."
	MsgAttachStub     = "Image attachments are not implemented yet."
	MsgCopied         = "Copied to clipboard."
	MsgExported       = "Memos exported."
	msgImportFailed   = "Failed to import file: %v"
	msgImported       = "Imported %d memos."
	msgUnknownFont    = "Unknown font size %q."
	msgCopyFailed     = "Copy failed: %v"
	msgPrefSaveFailed = "Could not save preference: %v"
)

// Command is a single user intent. SetDraft replaces the text entry, Edit
// moves the open memo into the draft and Delete removes the open memo once
// Confirmed.
type Command interface{ command() }

type (
	SetDraft struct {
		Content   string
		Important bool
	}
	ToggleStar            struct{}
	Save                  struct{}
	OpenDetail            struct{ ID int64 }
	CloseDetail           struct{}
	Edit                  struct{}
	Delete                struct{ Confirmed bool }
	Search                struct{ Keyword string }
	ToggleImportantFilter struct{}
	ToggleDarkMode        struct{}
	SetFontSize           struct{ Size string }
	Export                struct{ Now time.Time }
	Import                struct{ Data []byte }
	Copy                  struct{}
	Share                 struct{}
	AttachImage           struct{}
)

func (SetDraft) command()              {}
func (ToggleStar) command()            {}
func (Save) command()                  {}
func (OpenDetail) command()            {}
func (CloseDetail) command()           {}
func (Edit) command()                  {}
func (Delete) command()                {}
func (Search) command()                {}
func (ToggleImportantFilter) command() {}
func (ToggleDarkMode) command()        {}
func (SetFontSize) command()           {}
func (Export) command()                {}
func (Import) command()                {}
func (Copy) command()                  {}
func (Share) command()                 {}
func (AttachImage) command()           {}

// Effect is a side effect requested by a command.
type Effect interface{ effect() }

type (
	// Render asks for the list to be redrawn.
	Render struct{}
	Alert  struct{ Message string }
	// Confirm asks the user before a destructive command is repeated with
	// confirmation.
	Confirm  struct{ Prompt string }
	Download struct {
		Filename    string
		ContentType string
		Data        []byte
	}
	SavePreference struct{ Key, Value string }
	WriteClipboard struct{ Text string }
)

func (Render) effect()         {}
func (Alert) effect()          {}
func (Confirm) effect()        {}
func (Download) effect()       {}
func (SavePreference) effect() {}
func (WriteClipboard) effect() {}

// Apply runs cmd against st and returns the next state and the effects to
// perform. Store mutations happen here and are persisted by the store. On
// error the returned state is st unchanged.
func Apply(ctx context.Context, store MemoStore, st State, cmd Command) (State, []Effect, error) {
	switch c := cmd.(type) {
	case SetDraft:
		st.Draft = Draft{Content: c.Content, Important: c.Important}
		return st, nil, nil

	case ToggleStar:
		st.Draft.Important = !st.Draft.Important
		return st, nil, nil

	case Save:
		return applySave(ctx, store, st)

	case OpenDetail:
		m, ok := store.Get(c.ID)
		if !ok {
			return st, nil, nil
		}
		st.Detail = Detail{Open: true, Memo: *m}
		return st, nil, nil

	case CloseDetail:
		st.Detail = Detail{}
		return st, nil, nil

	case Edit:
		m, ok := openMemo(store, st)
		if !ok {
			return st, nil, nil
		}
		st.Draft = Draft{Content: m.Content, Important: m.IsImportant}
		st.EditingID = m.ID
		st.Detail = Detail{}
		return st, nil, nil

	case Delete:
		if !st.Detail.Open {
			return st, nil, nil
		}
		if !c.Confirmed {
			return st, []Effect{Confirm{Prompt: MsgConfirmDelete}}, nil
		}
		if _, err := store.Delete(ctx, st.Detail.Memo.ID); err != nil {
			return st, nil, err
		}
		st.Detail = Detail{}
		return st, []Effect{Render{}}, nil

	case Search:
		st.Keyword = strings.TrimSpace(c.Keyword)
		return st, []Effect{Render{}}, nil

	case ToggleImportantFilter:
		st.ImportantOnly = !st.ImportantOnly
		return st, []Effect{Render{}}, nil

	case ToggleDarkMode:
		st.Prefs.DarkMode = !st.Prefs.DarkMode
		return st, []Effect{SavePreference{Key: storage.KeyDarkMode, Value: strconv.FormatBool(st.Prefs.DarkMode)}}, nil

	case SetFontSize:
		if !ValidFontSize(c.Size) {
			return st, []Effect{Alert{Message: fmt.Sprintf(msgUnknownFont, c.Size)}}, nil
		}
		st.Prefs.FontSize = FontSize(c.Size)
		return st, []Effect{SavePreference{Key: storage.KeyFontSize, Value: c.Size}}, nil

	case Export:
		data, err := memos.MarshalExport(store.All())
		if err != nil {
			return st, nil, err
		}
		return st, []Effect{
			Download{
				Filename:    memos.ExportFilename(c.Now),
				ContentType: "application/json",
				Data:        data,
			},
			Alert{Message: MsgExported},
		}, nil

	case Import:
		list, err := memos.ParseSnapshot(c.Data)
		if err != nil {
			return st, []Effect{Alert{Message: fmt.Sprintf(msgImportFailed, err)}}, nil
		}
		n, err := store.ImportMerge(ctx, list)
		if err != nil {
			return st, nil, err
		}
		return st, []Effect{Alert{Message: fmt.Sprintf(msgImported, n)}, Render{}}, nil

	case Copy:
		m, ok := openMemo(store, st)
		if !ok {
			return st, nil, nil
		}
		return st, []Effect{WriteClipboard{Text: m.Content}}, nil

	case Share:
		if !st.Detail.Open {
			return st, nil, nil
		}
		return st, []Effect{Alert{Message: MsgShareMissing}}, nil

	case AttachImage:
		return st, []Effect{Alert{Message: MsgAttachStub}}, nil
	}

	return st, nil, fmt.Errorf("unknown command %T", cmd)
}

func applySave(ctx context.Context, store MemoStore, st State) (State, []Effect, error) {
	content := strings.TrimSpace(st.Draft.Content)
	if content == "" {
		return st, []Effect{Alert{Message: MsgEmptyContent}}, nil
	}

	if st.EditingID != 0 {
		// a stale id updates nothing; the draft is still cleared
		if _, err := store.Update(ctx, st.EditingID, content, st.Draft.Important); err != nil {
			return st, nil, err
		}
	} else {
		if _, err := store.Create(ctx, content, st.Draft.Important); err != nil {
			return st, nil, err
		}
	}

	st.Draft = Draft{}
	st.EditingID = 0
	return st, []Effect{Render{}}, nil
}

// openMemo returns the current version of the memo in the detail panel.
func openMemo(store MemoStore, st State) (*memos.Memo, bool) {
	if !st.Detail.Open {
		return nil, false
	}
	return store.Get(st.Detail.Memo.ID)
}
