package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/auth"
)

// RPCHandler mirrors the REST surface as named callable operations:
// POST /api/call/{name} with {"data": ...} answers {"result": ...}. Both
// transports run the same op functions, so behavior cannot drift between
// them.
type RPCHandler struct {
	Spools   *SpoolsHandler
	Laser    *LaserHandler
	Settings *SettingsHandler
	Owner    auth.OwnerPolicy
}

type rpcEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type idPayload struct {
	ID string `json:"id"`
}

type spoolWeighInPayload struct {
	SpoolID string `json:"spoolId"`
	weighInRequest
}

type laserAdjustPayload struct {
	MaterialID string `json:"materialId"`
	adjustStockRequest
}

type laserUpdatePayload struct {
	ID string `json:"id"`
	updateLaserRequest
}

type spoolUpdatePayload struct {
	ID string `json:"id"`
	updateSpoolRequest
}

// Call handles POST /api/call/{name}.
func (h *RPCHandler) Call(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var env rpcEnvelope
	if err := decodeJSON(r, &env); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if env.Data == nil {
		env.Data = json.RawMessage("{}")
	}

	result, opErr := h.dispatch(r, name, env.Data)
	if opErr != nil {
		jsonError(w, opErr.Status, opErr.Message)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"result": result})
}

func (h *RPCHandler) dispatch(r *http.Request, name string, data json.RawMessage) (any, *apiError) {
	ctx := r.Context()

	decode := func(target any) *apiError {
		if err := json.Unmarshal(data, target); err != nil {
			return errBadRequest("invalid data payload")
		}
		return nil
	}

	switch name {
	case "spoolsCreate":
		var req createSpoolRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opCreate(ctx, req)
	case "spoolsList":
		return h.Spools.opList(ctx)
	case "spoolsGet":
		var req idPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opGet(ctx, req.ID)
	case "spoolsUpdate":
		var req spoolUpdatePayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opUpdate(ctx, req.ID, req.updateSpoolRequest)
	case "spoolsArchive":
		var req idPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opArchive(ctx, req.ID)
	case "spoolsDelete":
		var req idPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opDelete(ctx, req.ID)
	case "spoolsAddWeighIn":
		var req spoolWeighInPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opAddWeighIn(ctx, req.SpoolID, req.weighInRequest)
	case "spoolsGetWeighIns":
		var req spoolWeighInPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opListWeighIns(ctx, req.SpoolID)
	case "spoolsScanLabel":
		var req scanLabelRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opScanLabel(ctx, req)
	case "spoolsEstimateRemaining":
		var req estimateRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Spools.opEstimateRemaining(ctx, req)

	case "laserCreate":
		var req createLaserRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Laser.opCreate(ctx, req)
	case "laserList":
		return h.Laser.opList(ctx)
	case "laserGet":
		var req idPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Laser.opGet(ctx, req.ID)
	case "laserUpdate":
		var req laserUpdatePayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Laser.opUpdate(ctx, req.ID, req.updateLaserRequest)
	case "laserDelete":
		var req idPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Laser.opDelete(ctx, req.ID)
	case "laserAdjustStock":
		var req laserAdjustPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Laser.opAdjustStock(ctx, req.MaterialID, req.adjustStockRequest)
	case "laserGetMovements":
		var req laserAdjustPayload
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Laser.opListMovements(ctx, req.MaterialID)
	case "laserScanLabel":
		var req scanLabelRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Laser.opScanLabel(ctx, req)

	case "settingsGetAI":
		return h.Settings.opGetAI(ctx)
	case "settingsSaveAI":
		var req saveAISettingsRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		return h.Settings.opSaveAI(ctx, req)
	case "settingsTestAI":
		return h.Settings.opTestAI(ctx)

	case "authCheckOwner":
		claims := GetClaims(ctx)
		if claims == nil {
			return nil, &apiError{Status: http.StatusUnauthorized, Message: "not authenticated"}
		}
		return map[string]any{
			"isOwner": h.Owner.IsOwner(claims.UID),
			"uid":     claims.UID,
		}, nil
	}

	return nil, errNotFound("unknown operation: " + name)
}

// NewRPCHandler wires the callable mirror over the same handlers the REST
// routes use.
func NewRPCHandler(db *sql.DB, owner auth.OwnerPolicy) *RPCHandler {
	return &RPCHandler{
		Spools:   &SpoolsHandler{DB: db},
		Laser:    &LaserHandler{DB: db},
		Settings: &SettingsHandler{DB: db},
		Owner:    owner,
	}
}
