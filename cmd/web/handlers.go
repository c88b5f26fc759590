package main

import (
	"net/http"

	"github.com/AdamBeresnev/torvi/internal/httputil"
	"github.com/AdamBeresnev/torvi/internal/middleware"
	"github.com/AdamBeresnev/torvi/internal/service"
	"github.com/AdamBeresnev/torvi/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type voteRequest struct {
	MatchID  string    `json:"match_id"`
	VotedFor uuid.UUID `json:"voted_for"`
}

type joinRequest struct {
	InviteCode  string `json:"invite_code"`
	DisplayName string `json:"display_name"`
}

type opponentsRequest struct {
	Links string `json:"links"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func tournamentIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return uuid.Nil, false
	}
	return id, true
}

// callerID is only called behind RequireRegistered.
func callerID(r *http.Request) uuid.UUID {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}

func (app *application) issueToken(w http.ResponseWriter, r *http.Request) {
	token, err := app.users.IssueAccessToken(r.Context(), callerID(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer"})
}

func (app *application) indexPage(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListTournaments(r.Context(), callerID(r))
	if err != nil {
		httputil.InternalServerError(w, "Failed to get tournaments", err)
		return
	}
	views.Render(w, r, views.IndexPage(tournaments))
}

func (app *application) tournamentPage(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentIDParam(w, r)
	if !ok {
		return
	}
	tournament, err := app.tournaments.GetTournament(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	views.Render(w, r, views.TournamentPage(tournament))
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTournamentInput
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	owner := callerID(r)
	opponents, err := app.opponents.Snapshot(r.Context(), owner, input.Opponents)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	input.Opponents = opponents

	tournament, err := app.tournaments.CreateTournament(r.Context(), owner, input)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tournament)
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListTournaments(r.Context(), callerID(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournaments)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentIDParam(w, r)
	if !ok {
		return
	}
	tournament, err := app.tournaments.GetTournament(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournament)
}

func (app *application) voteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentIDParam(w, r)
	if !ok {
		return
	}
	voter, _ := middleware.GetVoter(r.Context())

	var req voteRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.MatchID == "" || req.VotedFor == uuid.Nil {
		httputil.BadRequest(w, "match_id and voted_for are required", nil)
		return
	}

	tournament, err := app.tournaments.VoteMatch(r.Context(), id, req.MatchID, req.VotedFor, voter)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournament)
}

func (app *application) pauseTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentIDParam(w, r)
	if !ok {
		return
	}
	tournament, err := app.tournaments.PauseTournament(r.Context(), id, callerID(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournament)
}

func (app *application) resumeTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentIDParam(w, r)
	if !ok {
		return
	}
	tournament, err := app.tournaments.ResumeTournament(r.Context(), id, callerID(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournament)
}

func (app *application) createInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentIDParam(w, r)
	if !ok {
		return
	}

	var input service.CreateInviteInput
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &input); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
	}

	invite, err := app.tournaments.CreateInvite(r.Context(), id, callerID(r), input)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, invite)
}

func (app *application) joinTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentIDParam(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	joined, err := app.tournaments.JoinTournament(r.Context(), id, req.InviteCode, req.DisplayName)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, joined)
}

func (app *application) createOpponents(w http.ResponseWriter, r *http.Request) {
	var req opponentsRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	opponents, err := app.opponents.CreateFromLinks(r.Context(), callerID(r), req.Links)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, opponents)
}

func (app *application) listOpponents(w http.ResponseWriter, r *http.Request) {
	opponents, err := app.opponents.List(r.Context(), callerID(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, opponents)
}
