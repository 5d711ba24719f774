package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"spellblock/internal/game"
	"spellblock/internal/state"
	"spellblock/internal/types"
)

// Query serves JSON reads of committed state. Paths:
//   - /round/current, /round/<id>
//   - /commitment/<id>/<player>
//   - /streak/<player>, /multiplier/<streak>
//   - /account/<addr>, /treasury, /rollover, /params
func (a *SpellApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	st := a.Committed()
	v, err := queryPath(st, strings.TrimSpace(req.Path))
	if err != nil {
		codespace, code, log := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Code: code, Codespace: codespace, Log: log, Height: st.Height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: st.Height}, nil
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: st.Height}, nil
}

func queryPath(st *state.State, path string) (any, error) {
	now := st.BlockTime
	switch {
	case path == "/round/current":
		return game.QueryRound(st, 0, now)

	case strings.HasPrefix(path, "/round/"):
		id, err := parseRoundID(strings.TrimPrefix(path, "/round/"))
		if err != nil {
			return nil, err
		}
		return game.QueryRound(st, id, now)

	case strings.HasPrefix(path, "/commitment/"):
		parts := strings.Split(strings.TrimPrefix(path, "/commitment/"), "/")
		if len(parts) != 2 {
			return nil, types.ErrInvalidRequest.Wrap("want /commitment/<roundId>/<player>")
		}
		id, err := parseRoundID(parts[0])
		if err != nil {
			return nil, err
		}
		player, err := types.ParseAccount(parts[1])
		if err != nil {
			return nil, err
		}
		return game.QueryCommitment(st, id, player)

	case strings.HasPrefix(path, "/streak/"):
		player, err := types.ParseAccount(strings.TrimPrefix(path, "/streak/"))
		if err != nil {
			return nil, err
		}
		return game.QueryStreak(st, player), nil

	case strings.HasPrefix(path, "/multiplier/"):
		streak, err := strconv.ParseUint(strings.TrimPrefix(path, "/multiplier/"), 10, 64)
		if err != nil {
			return nil, types.ErrInvalidRequest.Wrap("invalid streak")
		}
		return map[string]any{"streak": streak, "multiplierBps": game.Multiplier(streak)}, nil

	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		if !types.IsModuleAccount(addr) {
			var err error
			if addr, err = types.ParseAccount(addr); err != nil {
				return nil, err
			}
		}
		return map[string]any{"addr": addr, "balance": st.Balance(addr)}, nil

	case path == "/treasury":
		return game.QueryTreasury(st), nil

	case path == "/rollover":
		return map[string]any{"rolloverAmount": st.Rollover}, nil

	case path == "/params":
		return map[string]any{
			"params":         st.Params,
			"operator":       st.Operator,
			"dictionaryRoot": st.DictionaryRoot,
		}, nil

	default:
		return nil, types.ErrInvalidRequest.Wrapf("unknown query path %q", path)
	}
}

func parseRoundID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, types.ErrInvalidRequest.Wrapf("invalid round id %q", s)
	}
	return id, nil
}
