package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/queries"
)

const (
	namespace      = "/"
	requestTimeout = 5 * time.Second
)

// TODO add chat

// Users is the lobby lookup the socket layer needs.
type Users interface {
	VerifyGame(ctx context.Context, id string) bool
	GetUserData(ctx context.Context, id string) (models.User, error)
}

// request is the JSON body every client event carries.
type request struct {
	GameID  string       `json:"game_id"`
	Token   string       `json:"token"`
	Tile    int          `json:"card_pos"`
	Amount  int          `json:"amount"`
	Action  string       `json:"action"`
	Color   string       `json:"color"`
	TradeID string       `json:"trade_id"`
	Accept  bool         `json:"accept"`
	Trade   models.Trade `json:"trade"`
}

type Server struct {
	io     *socketio.Server
	users  Users
	svc    *queries.GameService
	secret []byte
}

func NewServer(users Users, secret string) (*Server, error) {
	io, err := socketio.NewServer(nil)
	if err != nil {
		return nil, err
	}
	return &Server{io: io, users: users, secret: []byte(secret)}, nil
}

// Broadcast sends an event to every connection in the game's room.
func (s *Server) Broadcast(gameID, event string, payload interface{}) {
	s.io.BroadcastToRoom(namespace, gameID, event, payload)
}

var _ queries.Broadcaster = (*Server)(nil)

// decode parses a client message and resolves the user from its token.
func (s *Server) decode(msg string) (request, string, error) {
	var req request
	if err := json.Unmarshal([]byte(msg), &req); err != nil {
		return req, "", fmt.Errorf("malformed request: %w", err)
	}
	if req.GameID == "" {
		return req, "", errors.New("game_id not passed")
	}
	userID, err := pkg.ParseToken(s.secret, req.Token)
	if err != nil {
		return req, "", err
	}
	return req, userID, nil
}

type handler func(ctx context.Context, c socketio.Conn, userID string, req request) error

func (s *Server) on(event string, h handler) {
	s.io.OnEvent(namespace, event, func(c socketio.Conn, msg string) {
		req, userID, err := s.decode(msg)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			err = h(ctx, c, userID, req)
		}
		if err != nil {
			log.WithFields(log.Fields{
				"event":   event,
				"conn":    c.ID(),
				"game_id": req.GameID,
				"user_id": userID,
			}).WithError(err).Debug("socket request failed")
			c.Emit("error-message", err.Error())
		}
	})
}

// outcome adapts the service calls that only report success.
func outcome(_ queries.Outcome, err error) error { return err }

// Handle registers every game event against svc.
func (s *Server) Handle(svc *queries.GameService) {
	s.svc = svc

	s.io.OnConnect(namespace, func(c socketio.Conn) error {
		c.SetContext("")
		return nil
	})

	s.io.OnEvent(namespace, "see", func(c socketio.Conn) {
		log.WithField("conn", c.ID()).Debug("pinged")
	})

	s.on("join-game", s.join)

	s.on("leave-game", func(ctx context.Context, c socketio.Conn, userID string, req request) error {
		c.Leave(req.GameID)
		return svc.Leave(ctx, req.GameID, userID)
	})

	s.on("start-game", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		_, err := svc.Start(ctx, req.GameID, userID)
		return err
	})

	s.on("game-state", func(ctx context.Context, c socketio.Conn, _ string, req request) error {
		st, err := svc.State(ctx, req.GameID)
		if err != nil {
			return err
		}
		c.Emit("game-state", st)
		return nil
	})

	s.on("roll-dice", func(ctx context.Context, c socketio.Conn, userID string, req request) error {
		out, err := svc.Roll(ctx, req.GameID, userID)
		if err != nil {
			return err
		}
		if res, ok := out.Result.(engine.RollResult); ok {
			s.Broadcast(req.GameID, "dice-rolled", map[string]interface{}{"user_id": userID, "dice": res.Dice})
		}
		return nil
	})

	s.on("request-buy", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.Buy(ctx, req.GameID, userID))
	})
	s.on("decline-buy", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.Decline(ctx, req.GameID, userID))
	})
	s.on("bid", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.Bid(ctx, req.GameID, userID, req.Amount))
	})

	tileEvents := map[string]func(context.Context, string, string, int) (queries.Outcome, error){
		"buy-house":  svc.BuildHouse,
		"buy-hotel":  svc.BuildHotel,
		"sell-house": svc.SellHouse,
		"sell-hotel": svc.SellHotel,
		"mortgage":   svc.Mortgage,
		"unmortgage": svc.Unmortgage,
	}
	for event, op := range tileEvents {
		op := op
		s.on(event, func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
			return outcome(op(ctx, req.GameID, userID, req.Tile))
		})
	}

	s.on("jail", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.Jail(ctx, req.GameID, userID, engine.JailAction(req.Action)))
	})
	s.on("pay-out-jail", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.Jail(ctx, req.GameID, userID, engine.JailPay))
	})
	s.on("end-turn", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.EndTurn(ctx, req.GameID, userID))
	})
	s.on("bankrupt", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.DeclareBankruptcy(ctx, req.GameID, userID))
	})
	s.on("pause-game", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.Pause(ctx, req.GameID, userID))
	})
	s.on("resume-game", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		return outcome(svc.Resume(ctx, req.GameID, userID))
	})

	s.on("propose-trade", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		tr := req.Trade
		tr.FromID = userID
		_, err := svc.ProposeTrade(ctx, req.GameID, tr)
		return err
	})
	s.on("respond-trade", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		_, err := svc.RespondTrade(ctx, req.GameID, userID, req.TradeID, req.Accept)
		return err
	})
	s.on("cancel-trade", func(ctx context.Context, _ socketio.Conn, userID string, req request) error {
		_, err := svc.CancelTrade(ctx, req.GameID, userID, req.TradeID)
		return err
	})

	s.io.OnError(namespace, func(c socketio.Conn, e error) {
		log.WithError(e).Warn("socket error")
	})

	s.io.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		userID, _ := c.Context().(string)
		for _, room := range c.Rooms() {
			s.Broadcast(room, "player-disconnected", userID)
		}
		c.LeaveAll()
		log.WithFields(log.Fields{"conn": c.ID(), "user_id": userID, "reason": reason}).Debug("disconnected")
	})
}

// join seats the user in a lobby game, or puts a seated player back in
// the room of a game already under way.
func (s *Server) join(ctx context.Context, c socketio.Conn, userID string, req request) error {
	if !s.users.VerifyGame(ctx, req.GameID) {
		return errors.New("invalid game")
	}
	user, err := s.users.GetUserData(ctx, userID)
	if err != nil {
		return fmt.Errorf("user retrieval failed: %w", err)
	}

	err = s.svc.Join(ctx, req.GameID, userID, user.Email, req.Color)
	if errors.Is(err, queries.ErrInvalidStatus) {
		st, serr := s.svc.State(ctx, req.GameID)
		if serr != nil || !seated(st, userID) {
			return err
		}
		c.Emit("game-state", st)
	} else if err != nil {
		return err
	}

	c.SetContext(userID)
	c.Join(req.GameID)
	c.Emit("joined-game", s.io.RoomLen(namespace, req.GameID))
	log.WithFields(log.Fields{"conn": c.ID(), "game_id": req.GameID, "user_id": userID}).Info("joined room")
	return nil
}

func seated(st models.GameState, userID string) bool {
	for _, p := range st.Players {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ListenAndServe serves socket.io on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, origins []string) error {
	go func() {
		if err := s.io.Serve(); err != nil {
			log.WithError(err).Error("socket.io stopped")
		}
	}()
	defer s.io.Close()

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
	})
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", s.io)
	srv := &http.Server{Addr: addr, Handler: c.Handler(mux)}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.WithField("addr", addr).Info("socket server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
