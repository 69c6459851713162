// Package main provides an interactive terminal client for the Vocly
// server. It maps keyboard commands onto the wire protocol and renders
// the typed server events.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

func main() {
	host := flag.String("host", "127.0.0.1", "server host")
	port := flag.Int("port", 5000, "server port")
	flag.Parse()

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))

	display := newDisplay()
	display.banner()

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		display.errorf("Could not connect to %s: %v", addr, err)
		os.Exit(1)
	}
	defer conn.Close()
	display.infof("Connected to %s", addr)

	done := make(chan struct{})
	go readLoop(conn, display, done)

	display.help()

	stdin := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-done:
			display.infof("Server closed the connection")
			return
		default:
		}

		if !stdin.Scan() {
			sendCommand(conn, "QUIT", nil)
			return
		}

		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}

		verb, arg := splitCommand(line)
		switch verb {
		case "create":
			sendCommand(conn, "create_room", nil)
		case "join":
			if arg == "" {
				display.errorf("Usage: join CODE")
				continue
			}
			sendCommand(conn, "join_room", map[string]string{"room_code": arg})
		case "start":
			sendCommand(conn, "start_game", nil)
		case "guess":
			if arg == "" {
				display.errorf("Usage: guess WORD")
				continue
			}
			sendCommand(conn, "make_guess", map[string]string{"guess": arg})
		case "rematch":
			sendCommand(conn, "rematch", nil)
		case "help":
			display.help()
		case "quit", "exit":
			sendCommand(conn, "QUIT", nil)
			display.infof("Bye!")
			return
		default:
			display.errorf("Unknown command %q (try: help)", verb)
		}
	}
}

func splitCommand(line string) (verb, arg string) {
	parts := strings.SplitN(line, " ", 2)
	verb = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return verb, arg
}

func sendCommand(conn net.Conn, command string, data any) {
	msg := map[string]any{"command": command}
	if data != nil {
		msg["data"] = data
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(conn, "%s\n", encoded)
}

// serverEvent mirrors the server's message envelope.
type serverEvent struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
}

// readLoop prints every server event until the stream closes.
func readLoop(conn net.Conn, display *display, done chan<- struct{}) {
	defer close(done)

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		var ev serverEvent
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &ev); err != nil {
			display.errorf("Bad frame from server: %v", err)
			continue
		}
		display.render(ev)
	}
}

// display renders server events with per-type colors.
type display struct {
	info     *color.Color
	event    *color.Color
	good     *color.Color
	bad      *color.Color
	warn     *color.Color
	correct  *color.Color
	present  *color.Color
	absent   *color.Color
	headline *color.Color
}

func newDisplay() *display {
	return &display{
		info:     color.New(color.FgCyan),
		event:    color.New(color.FgWhite),
		good:     color.New(color.FgGreen, color.Bold),
		bad:      color.New(color.FgRed, color.Bold),
		warn:     color.New(color.FgYellow),
		correct:  color.New(color.FgBlack, color.BgGreen),
		present:  color.New(color.FgBlack, color.BgYellow),
		absent:   color.New(color.FgWhite, color.BgHiBlack),
		headline: color.New(color.FgMagenta, color.Bold),
	}
}

func (d *display) banner() {
	d.headline.Println("=== VOCLY: two-player word duel ===")
}

func (d *display) help() {
	d.info.Println("Commands: create | join CODE | start | guess WORD | rematch | quit")
}

func (d *display) infof(format string, args ...any)  { d.info.Printf(format+"\n", args...) }
func (d *display) errorf(format string, args ...any) { d.bad.Printf(format+"\n", args...) }

func (d *display) render(ev serverEvent) {
	switch ev.Type {
	case "welcome":
		var data struct {
			Message    string `json:"message"`
			ClientID   string `json:"client_id"`
			ServerInfo struct {
				WordLength   int `json:"word_length"`
				MaxGuesses   int `json:"max_guesses"`
				GameDuration int `json:"game_duration"`
				WordBankSize int `json:"word_bank_size"`
			} `json:"server_info"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.good.Printf("%s (you are %s)\n", data.Message, data.ClientID)
		d.info.Printf("Words: %d letters, %d guesses, %ds per round, %d-word bank\n",
			data.ServerInfo.WordLength, data.ServerInfo.MaxGuesses,
			data.ServerInfo.GameDuration, data.ServerInfo.WordBankSize)
	case "room_created":
		var data struct {
			RoomCode string `json:"room_code"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.good.Printf("Room created! Share this code: %s\n", data.RoomCode)
	case "room_ready", "rematch_ready", "game_started":
		var data struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.headline.Println(data.Message)
	case "guess_result":
		var data struct {
			Guess      string   `json:"guess"`
			Feedback   []string `json:"feedback"`
			GuessCount int      `json:"guess_count"`
			IsCorrect  bool     `json:"is_correct"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.renderFeedback(data.Guess, data.Feedback)
		if data.IsCorrect {
			d.good.Printf("Correct on guess %d!\n", data.GuessCount)
		} else {
			d.event.Printf("Guess %d\n", data.GuessCount)
		}
	case "opponent_guessed":
		var data struct {
			GuessCount int `json:"guess_count"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.warn.Printf("Opponent has made %d guess(es)\n", data.GuessCount)
	case "player_finished":
		var data struct {
			Result  string  `json:"result"`
			Time    float64 `json:"time"`
			Message string  `json:"message"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		if data.Result == "won" {
			d.good.Printf("%s (%.2fs)\n", data.Message, data.Time)
		} else {
			d.bad.Println(data.Message)
		}
	case "game_over":
		var data struct {
			Result string `json:"result"`
			Word   string `json:"word"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.headline.Printf("GAME OVER: %s (word was %s)\n", data.Result, data.Word)
	case "opponent_disconnected":
		var data struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.warn.Println(data.Message)
	case "error":
		var data struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(ev.Data, &data)
		d.bad.Printf("Error: %s\n", data.Message)
	default:
		d.event.Printf("[%s] %s\n", ev.Type, ev.Data)
	}
}

// renderFeedback prints the guess with wordle-style cell coloring.
func (d *display) renderFeedback(guess string, feedback []string) {
	for i, mark := range feedback {
		var cell *color.Color
		switch mark {
		case "correct":
			cell = d.correct
		case "present":
			cell = d.present
		default:
			cell = d.absent
		}
		letter := "?"
		if i < len(guess) {
			letter = string(guess[i])
		}
		cell.Printf(" %s ", letter)
	}
	fmt.Println()
}
