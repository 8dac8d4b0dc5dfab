package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/ballotchain/vote-submission-service/internal/types"
)

// GetElectionInfo godoc
// @Summary Get election info
// @Description Reads the election state from its ledger contract
// @Produce json
// @Param election_id path string true "Election id"
// @Success 200 {object} PublicResponse[services.ElectionInfoPublic] "Election info"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/elections/{election_id} [get]
func (h *Handler) GetElectionInfo(request *http.Request) (*Result, *types.Error) {
	electionID := chi.URLParam(request, "election_id")
	if electionID == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "election_id is required")
	}

	info, err := h.services.GetElectionInfo(request.Context(), electionID)
	if err != nil {
		return nil, err
	}
	return NewResult(info), nil
}
