// Package http serves the quiz wire contract locally: a chained question set
// playable by any client speaking the same protocol, plus a websocket stream
// of scoreboard updates.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"quizdash/internal/ledger"
	"quizdash/internal/quizhttp"
)

// QuizHandler exposes the question chain and the scoreboard stream.
type QuizHandler struct {
	repo     *PackRepository
	scores   *ledger.Ledger
	upgrader websocket.Upgrader
}

func NewQuizHandler(repo *PackRepository, scores *ledger.Ledger) *QuizHandler {
	return &QuizHandler{
		repo:   repo,
		scores: scores,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register wires the handler's routes into mux.
func (h *QuizHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /quiz/question/{id}", h.ServeQuestion)
	mux.HandleFunc("POST /quiz/answer/{id}", h.ServeAnswer)
	mux.HandleFunc("GET /ws", h.ServeWS)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// ServeQuestion responds with the question resource: prompt, alternatives and
// limit when present, and the URL the answer must be posted to.
func (h *QuizHandler) ServeQuestion(w http.ResponseWriter, r *http.Request) {
	index, pack, ok := h.chainQuestion(w, r)
	if !ok {
		return
	}

	question := pack[index]
	payload := quizhttp.QuestionPayload{
		Question:     question.Prompt,
		Alternatives: question.Alternatives,
		Limit:        question.Limit,
		NextURL:      absoluteURL(r, fmt.Sprintf("/quiz/answer/%d", index+1)),
	}
	writeJSON(w, http.StatusOK, payload)
}

// ServeAnswer scores a submission: 400 for a wrong answer, 200 with the next
// question URL otherwise. The final question's response carries no nextURL,
// signalling chain exhaustion.
func (h *QuizHandler) ServeAnswer(w http.ResponseWriter, r *http.Request) {
	index, pack, ok := h.chainQuestion(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid answer payload"})
		return
	}

	question := pack[index]
	if !matches(question, req.Answer) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "wrong answer"})
		return
	}

	result := quizhttp.AnswerResult{}
	if index+1 < len(pack) {
		result.NextURL = absoluteURL(r, fmt.Sprintf("/quiz/question/%d", index+2))
	}
	writeJSON(w, http.StatusOK, result)
}

// ServeWS streams scoreboard snapshots to a websocket client until it
// disconnects.
func (h *QuizHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel, err := h.scores.Subscribe(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("scoreboard subscription failed")
		return
	}
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case board, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(board); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		case <-closed:
			return
		}
	}
}

// chainQuestion resolves the {id} path segment against the pack. IDs are
// 1-based list positions.
func (h *QuizHandler) chainQuestion(w http.ResponseWriter, r *http.Request) (int, []ChainQuestion, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "question not found"})
		return 0, nil, false
	}

	pack, err := h.repo.GetPack(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("loading question pack failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "question pack unavailable"})
		return 0, nil, false
	}

	if id > len(pack) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "question not found"})
		return 0, nil, false
	}
	return id - 1, pack, true
}

func matches(question ChainQuestion, answer string) bool {
	if len(question.Alternatives) > 0 {
		return strings.TrimSpace(answer) == question.Answer
	}
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(question.Answer))
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("response encode failed")
	}
}
