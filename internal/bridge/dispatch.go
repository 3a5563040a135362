package bridge

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/command"
	"github.com/udisondev/soundscape/internal/engine"
	"github.com/udisondev/soundscape/internal/session"
)

// dispatch runs on the connection's reader goroutine. Everything that
// touches engine state is handed to the tick goroutine.
func (s *Server) dispatch(ctx context.Context, c *conn, f Inbound) {
	switch f.Type {
	case TypeJoin:
		if f.Player == uuid.Nil || f.Location == nil {
			c.reply(f.RequestID, nil, fmt.Errorf("%w: join needs player and location", command.ErrBadArgument))
			return
		}
		p := session.NewPlayer(f.Player, f.Name, *f.Location, f.Permissions)
		s.hub.own(f.Player, c)
		s.run(c, f, func() (any, error) {
			s.eng.Join(p)
			return nil, nil
		})

	case TypeQuit:
		s.run(c, f, func() (any, error) {
			err := s.eng.Quit(f.Player)
			s.hub.disown(f.Player, c)
			return nil, err
		})

	case TypeRegion:
		if f.Op == OpCreate && f.Wait {
			s.awaitCreate(ctx, c, f)
			return
		}
		s.run(c, f, func() (any, error) {
			a, err := s.actor(f.Player)
			if err != nil {
				return nil, err
			}
			return s.region(ctx, a, f)
		})

	case TypeHello:
		c.reply(f.RequestID, nil, fmt.Errorf("%w: already authenticated", command.ErrBadArgument))

	default:
		s.run(c, f, func() (any, error) {
			return s.event(f)
		})
	}
}

// run executes fn on the tick goroutine and replies with its result.
func (s *Server) run(c *conn, f Inbound, fn func() (any, error)) {
	ok := s.eng.Do(func() {
		payload, err := fn()
		c.reply(f.RequestID, payload, err)
	})
	if !ok {
		c.reply(f.RequestID, nil, engine.ErrStopped)
	}
}

// event handles player events and the non-region commands. Tick goroutine.
func (s *Server) event(f Inbound) (any, error) {
	switch f.Type {
	case TypeMove:
		if f.Location == nil {
			return nil, fmt.Errorf("%w: move needs a location", command.ErrBadArgument)
		}
		cause, err := engine.ParseCause(f.Cause)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", command.ErrBadArgument, err)
		}
		return nil, s.eng.Move(f.Player, *f.Location, cause, f.Cancelled)

	case TypePermissions:
		p, ok := s.eng.Players().Get(f.Player)
		if !ok {
			return nil, engine.ErrUnknownPlayer
		}
		p.SetPermissions(f.Permissions)
		return nil, nil

	case TypeChat:
		return played(s.eng.Chat(f.Player, f.Text, f.Cancelled))
	case TypeCommand:
		return played(s.eng.Command(f.Player, f.Text, f.Cancelled))
	case TypeInventoryClick:
		return played(s.eng.InventoryClick(f.Player, f.Text, f.Cancelled))
	case TypeBedLeave:
		return played(s.eng.BedLeave(f.Player, f.WorldTime))
	case TypeTrigger:
		return played(s.eng.Trigger(f.Name, f.Player, f.Location, f.Cancelled))
	}

	a, err := s.actor(f.Player)
	if err != nil {
		return nil, err
	}
	switch f.Type {
	case TypeToggle:
		return s.handler.Toggle(a, f.Enabled)

	case TypeSelect:
		corner, err := command.ParseCorner(f.Corner)
		if err != nil {
			return nil, err
		}
		return s.handler.SetPosition(a, corner, f.Location)

	case TypeConfirm:
		return s.handler.Confirm(a)

	case TypeSounds:
		return s.handler.SoundList(a, f.Page)
	}
	return nil, fmt.Errorf("%w: unknown frame type %q", command.ErrBadArgument, f.Type)
}

// region runs a region operation. Tick goroutine.
func (s *Server) region(ctx context.Context, a command.Actor, f Inbound) (any, error) {
	switch f.Op {
	case OpCreate:
		return s.handler.Create(ctx, a, f.Name, f.Description)
	case OpDelete:
		return s.handler.Delete(ctx, a, f.Region)
	case OpRename:
		return s.handler.Rename(ctx, a, f.Region, f.NewName)
	case OpInfo:
		return s.handler.Info(a, f.Region)
	case OpList:
		return s.handler.List(a, f.Owner, f.Page)
	case OpTeleport:
		return s.handler.Teleport(a, f.Region)
	case OpSetPosition:
		corner, err := command.ParseCorner(f.Corner)
		if err != nil {
			return nil, err
		}
		return s.handler.SetPosition(a, corner, f.Location)
	case OpSetDescription:
		return s.handler.SetDescription(ctx, a, f.Region, f.Description)
	}
	return nil, fmt.Errorf("%w: unknown region op %q", command.ErrBadArgument, f.Op)
}

// awaitCreate waits for the selection off the tick goroutine and replies
// once the region is created or the connection ends.
func (s *Server) awaitCreate(ctx context.Context, c *conn, f Inbound) {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()

		var a command.Actor
		err := s.eng.Call(ctx, func() error {
			var err error
			a, err = s.actor(f.Player)
			return err
		})
		if err != nil {
			c.reply(f.RequestID, nil, err)
			return
		}
		res, err := s.handler.AwaitCreate(ctx, a, f.Name, f.Description)
		c.reply(f.RequestID, res, err)
	}()
}

// actor resolves the sender of a command. uuid.Nil is the console.
func (s *Server) actor(id uuid.UUID) (command.Actor, error) {
	if id == uuid.Nil {
		return command.Console(), nil
	}
	p, ok := s.eng.Players().Get(id)
	if !ok {
		return command.Actor{}, engine.ErrUnknownPlayer
	}
	return command.PlayerActor(p), nil
}

func played(n int, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return Played{Sounds: n}, nil
}
