package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/igniter-hq/igniter-go/apperror"
	"github.com/igniter-hq/igniter-go/schema/structschema"
	"github.com/igniter-hq/igniter-go/store"
)

// Note is the demo domain's persisted record, stored as a JSON string
// under "note:<id>" and indexed in the "notes:index" set.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listNotesQuery struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

type getNoteParams struct {
	ID string `json:"id" validate:"required"`
}

type createNoteBody struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	Body  string `json:"body" validate:"max=10000"`
}

type updateNoteBody struct {
	Title string `json:"title" validate:"omitempty,min=1,max=200"`
	Body  string `json:"body" validate:"max=10000"`
}

const notesIndexKey = "notes:index"

func noteKey(id string) string { return "note:" + id }

func loadNote(ctx context.Context, s store.Store, id string) (*Note, error) {
	raw, err := s.Get(ctx, noteKey(id))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	var n Note
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func saveNote(ctx context.Context, s store.Store, n *Note) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, noteKey(n.ID), string(raw), 0); err != nil {
		return err
	}
	return s.SAdd(ctx, notesIndexKey, n.ID)
}

// newNotesController wires the demo "notes" resource: a list/get query
// pair, a create/update mutation pair that publish revalidations, and a
// stream action registered on the "notes" channel that sends a single
// "ready" frame (spec §4.3, §4.7).
func newNotesController() *igniter.Controller {
	c := igniter.NewController("notes", "/notes", requireAPIKey())

	c.Query("list", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		s := igniter.MustGet[store.Store](ctx, "store")

		ids, err := s.SMembers(context.Background(), notesIndexKey)
		if err != nil {
			return nil, apperror.Internal(err)
		}

		limit := 100
		if req.Query("limit") != "" {
			parsed, parseErr := structschema.Of[listNotesQuery]().Parse(req.QueryValues())
			if parseErr == nil && parsed.Limit > 0 {
				limit = parsed.Limit
			}
		}

		notes := make([]*Note, 0, len(ids))
		for _, id := range ids {
			n, err := loadNote(context.Background(), s, id)
			if err != nil {
				return nil, apperror.Internal(err)
			}
			if n == nil {
				continue
			}
			notes = append(notes, n)
			if len(notes) >= limit {
				break
			}
		}
		return notes, nil
	}, igniter.WithQuerySchema(structschema.Of[listNotesQuery]())))

	c.Query("get", igniter.NewQuery("/:id", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		s := igniter.MustGet[store.Store](ctx, "store")
		n, err := loadNote(context.Background(), s, req.Param("id"))
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if n == nil {
			return nil, apperror.NotFound(fmt.Sprintf("note %q not found", req.Param("id")))
		}
		return n, nil
	}, igniter.WithParamsSchema(structschema.Of[getNoteParams]())))

	c.Mutation("create", igniter.NewMutation("POST", "/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		body, err := req.BodyJSON()
		if err != nil {
			return nil, err
		}
		input, parseErr := structschema.Of[createNoteBody]().Parse(body)
		if parseErr != nil {
			return nil, apperror.Validation("invalid note", parseErr.Error())
		}

		s := igniter.MustGet[store.Store](ctx, "store")
		n := &Note{ID: newNoteID(), Title: input.Title, Body: input.Body, UpdatedAt: time.Now()}
		if err := saveNote(context.Background(), s, n); err != nil {
			return nil, apperror.Internal(err)
		}

		res := igniter.MustGet[*igniter.Response](ctx, "response")
		res.Revalidate([]string{"notes:list"})
		return res.Status(201).Body(n), nil
	}, igniter.WithBodySchema(structschema.Of[createNoteBody]())))

	c.Mutation("update", igniter.NewMutation("PATCH", "/:id", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		s := igniter.MustGet[store.Store](ctx, "store")
		n, err := loadNote(context.Background(), s, req.Param("id"))
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if n == nil {
			return nil, apperror.NotFound(fmt.Sprintf("note %q not found", req.Param("id")))
		}

		body, err := req.BodyJSON()
		if err != nil {
			return nil, err
		}
		input, parseErr := structschema.Of[updateNoteBody]().Parse(body)
		if parseErr != nil {
			return nil, apperror.Validation("invalid note", parseErr.Error())
		}
		if input.Title != "" {
			n.Title = input.Title
		}
		if input.Body != "" {
			n.Body = input.Body
		}
		n.UpdatedAt = time.Now()

		if err := saveNote(context.Background(), s, n); err != nil {
			return nil, apperror.Internal(err)
		}

		res := igniter.MustGet[*igniter.Response](ctx, "response")
		res.Revalidate([]string{"notes:list", "notes:" + n.ID})
		return n, nil
	}, igniter.WithParamsSchema(structschema.Of[getNoteParams]()), igniter.WithBodySchema(structschema.Of[updateNoteBody]())))

	c.Stream("watch", igniter.NewStream("/watch", func(req *igniter.Request, ctx *igniter.Context, stream *igniter.StreamHandle) error {
		stream.Send("ready", map[string]any{"channel": "notes"})
		return nil
	}, igniter.WithChannel("notes")))

	return c
}

// requireAPIKey is the demo's sole procedure: it rejects any request
// missing a non-empty X-Api-Key header (spec §4.2 "Procedure").
func requireAPIKey() igniter.Procedure {
	return igniter.Simple("requireAPIKey", func(req *igniter.Request, ctx *igniter.Context) (igniter.ProcedureResult, error) {
		key := strings.TrimSpace(req.Header("X-Api-Key"))
		if key == "" {
			return igniter.Respond(igniter.Unauthorized("missing X-Api-Key header")), nil
		}
		return igniter.Patch(igniter.ContextPatch{"apiKey": key}), nil
	})
}

var noteSeq int64

func newNoteID() string {
	noteSeq++
	return fmt.Sprintf("n%d-%d", time.Now().UnixNano(), noteSeq)
}
