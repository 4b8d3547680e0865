package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/parser"
	"github.com/latticeforge/gramwalk/session"
	"github.com/latticeforge/gramwalk/vocab"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "HTTP/websocket listen address")
	vocabFile := fs.String("vocab", "", "Newline-delimited vocabulary file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gramwalk serve [options] <grammar.json>

Start an HTTP server exposing a websocket endpoint at /ws that accepts
tokens as JSON messages and streams back the resulting frontier after
each one, for interactively exercising a grammar from a browser or a
small script.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("grammar file required")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read grammar: %w", err)
	}
	spec, err := parser.FromJSON(data)
	if err != nil {
		return fmt.Errorf("parse grammar: %w", err)
	}
	sm, err := parser.Compile(spec)
	if err != nil {
		return fmt.Errorf("compile grammar: %w", err)
	}

	var vocabulary *vocab.Trie
	if *vocabFile != "" {
		words, err := readLines(*vocabFile)
		if err != nil {
			return fmt.Errorf("read vocab: %w", err)
		}
		vocabulary = vocab.New(words...)
	}

	srv := newDebugServer(sm, vocabulary)
	http.HandleFunc("/ws", srv.handleWebSocket)
	http.HandleFunc("/health", srv.handleHealth)

	fmt.Printf("gramwalk debug server listening on %s (ws endpoint at /ws)\n", *addr)
	return http.ListenAndServe(*addr, nil)
}

// debugServer accepts websocket connections, each given its own
// session.Session over the same compiled grammar, and streams back the
// frontier after every token offered on that connection. It holds no
// per-connection client registry, since nothing here needs to broadcast
// across connections.
type debugServer struct {
	sm       *machine.StateMachine
	voc      *vocab.Trie
	upgrader websocket.Upgrader
}

func newDebugServer(sm *machine.StateMachine, voc *vocab.Trie) *debugServer {
	return &debugServer{
		sm:  sm,
		voc: voc,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *debugServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

// stepMessage is the envelope for both directions of the websocket
// protocol: a client sends {"token": "..."}, the server replies with the
// frontier summary after applying it.
type stepMessage struct {
	Token        string       `json:"token,omitempty"`
	FrontierSize int          `json:"frontierSize,omitempty"`
	Results      []stepResult `json:"results,omitempty"`
	Error        string       `json:"error,omitempty"`
}

type stepResult struct {
	Token    string `json:"token"`
	RawValue string `json:"rawValue"`
	Accepted bool   `json:"accepted"`
	State    string `json:"state"`
}

func (s *debugServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sess := session.New(s.sm, s.voc)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg stepMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		results, err := sess.Advance(msg.Token)
		if err != nil {
			conn.WriteJSON(stepMessage{Error: err.Error()})
			continue
		}

		reply := stepMessage{FrontierSize: len(sess.Frontier())}
		for _, res := range results {
			raw, _ := res.Walker.RawValue()
			reply.Results = append(reply.Results, stepResult{
				Token:    res.Token,
				RawValue: raw,
				Accepted: res.Walker.HasReachedAcceptState(),
				State:    fmt.Sprintf("%v", res.Walker.CurrentState()),
			})
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("websocket write error: %v", err)
			return
		}
	}
}
