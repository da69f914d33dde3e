package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/liftplan/internal/history"
	"github.com/meltforce/liftplan/internal/progression"
)

// --- Tool definitions ---

var (
	weightMap = mcp.AdditionalProperties(map[string]any{"type": "number"})
	unitParam = mcp.WithString("unit", mcp.Description("Weight unit. Defaults to kg."), mcp.Enum("kg", "lbs"))
	saveParam = mcp.WithBoolean("save", mcp.Description("Record the program in the user's history. Defaults to false."))
)

var toolGenerate5x5 = mcp.NewTool("generate_5x5",
	mcp.WithDescription("Generate a 5x5 linear progression: three full-body sessions per week, 5 sets of 5 per lift, weight added every session (deadlift every other session). Returns weekly sessions, per-lift chart history and final weights."),
	mcp.WithNumber("weeks", mcp.Description("Program length in weeks (1-52). Defaults to 12."), mcp.Min(1), mcp.Max(52)),
	mcp.WithObject("exercises", mcp.Description("Starting working weight per exercise key, e.g. {\"squat\": 60, \"bench\": 40}."), weightMap),
	mcp.WithNumber("increment", mcp.Description("Weight added per progression step. Defaults to 2.5.")),
	mcp.WithObject("cadence", mcp.Description("Per-exercise advancement cadence: the lift progresses on sessions whose number within the week is a multiple of it (1-3)."), mcp.AdditionalProperties(map[string]any{"type": "integer"})),
	unitParam,
	saveParam,
)

var toolGenerate531 = mcp.NewTool("generate_531",
	mcp.WithDescription("Generate a Wendler 5/3/1 plan: 4-week cycles of fixed percentages of a training max, with the training max raised after each cycle. Projected maxes are an estimate, not a measured 1RM."),
	mcp.WithNumber("cycles", mcp.Description("Number of 4-week cycles (1-12). Defaults to 4."), mcp.Min(1), mcp.Max(12)),
	mcp.WithObject("max_lifts", mcp.Description("One-rep max per exercise key, e.g. {\"squat\": 100, \"press\": 50}."), weightMap),
	mcp.WithNumber("training_max_percent", mcp.Description("Training max as a percentage of 1RM (50-100). Defaults to 90."), mcp.Min(50), mcp.Max(100)),
	mcp.WithObject("increments", mcp.Description("Training max increase per cycle: {\"upper\": 2.5, \"lower\": 5}. Lower applies to squat and deadlift variants.")),
	unitParam,
	saveParam,
)

var splitParams = []mcp.ToolOption{
	mcp.WithNumber("weeks", mcp.Description("Program length in weeks (1-52). Defaults to 12."), mcp.Min(1), mcp.Max(52)),
	mcp.WithNumber("sets", mcp.Description("Sets per exercise (1-10). Defaults to 3."), mcp.Min(1), mcp.Max(10)),
	mcp.WithNumber("reps_min", mcp.Description("Bottom of the rep range. Defaults to 8.")),
	mcp.WithNumber("reps_max", mcp.Description("Top of the rep range; reaching it adds weight and resets reps. Defaults to 12.")),
	mcp.WithNumber("increment", mcp.Description("Weight added when the top of the rep range is reached. Defaults to 2.5.")),
	unitParam,
	saveParam,
}

var toolGeneratePPL = mcp.NewTool("generate_ppl", append([]mcp.ToolOption{
	mcp.WithDescription("Generate a Push/Pull/Legs split with double progression: reps climb through the range, then weight goes up and reps reset."),
	mcp.WithNumber("frequency", mcp.Description("Sessions per week: 3 or 6. Defaults to 6."), mcp.Min(3), mcp.Max(6)),
	mcp.WithObject("push_exercises", mcp.Description("Starting weight per push exercise key."), weightMap),
	mcp.WithObject("pull_exercises", mcp.Description("Starting weight per pull exercise key."), weightMap),
	mcp.WithObject("leg_exercises", mcp.Description("Starting weight per leg exercise key."), weightMap),
}, splitParams...)...)

var toolGenerateUpperLower = mcp.NewTool("generate_upper_lower", append([]mcp.ToolOption{
	mcp.WithDescription("Generate an Upper/Lower split with double progression: reps climb through the range, then weight goes up and reps reset."),
	mcp.WithNumber("frequency", mcp.Description("Sessions per week: 2 or 4. Defaults to 4."), mcp.Min(2), mcp.Max(4)),
	mcp.WithObject("upper_exercises", mcp.Description("Starting weight per upper-body exercise key."), weightMap),
	mcp.WithObject("lower_exercises", mcp.Description("Starting weight per lower-body exercise key."), weightMap),
}, splitParams...)...)

var toolEstimateOneRepMax = mcp.NewTool("estimate_one_rep_max",
	mcp.WithDescription("Estimate a one-rep max from a set and list training weights from 100% down to 50% of it."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Reps completed")),
	mcp.WithString("formula", mcp.Description("Estimation formula. Defaults to epley."), mcp.Enum("epley", "brzycki")),
)

var toolListHistory = mcp.NewTool("list_history",
	mcp.WithDescription("List the user's saved program summaries, newest first."),
)

var toolGetSavedProgram = mcp.NewTool("get_saved_program",
	mcp.WithDescription("Return the last saved configuration and schedule of a program type."),
	mcp.WithString("program", mcp.Required(), mcp.Description("Program type"), mcp.Enum("5x5", "531", "ppl", "upper_lower")),
)

// --- Tool handlers ---

// generate returns the handler of one program's tool. Tool arguments are the
// program's JSON configuration plus an optional save flag.
func (h *handlers) generate(p progression.Program) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]any, len(req.GetArguments()))
		for k, v := range req.GetArguments() {
			args[k] = v
		}
		save := req.GetBool("save", false)
		delete(args, "save")

		raw, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}
		cfg, err := progression.DecodeConfig(p, raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var out any
		if save {
			out, err = h.ds.Save(ctx, UserIDFromContext(ctx), cfg)
		} else {
			var res any
			res, err = progression.Generate(cfg)
			out = &Generated{Program: p, Config: cfg, Result: res}
		}
		if err != nil {
			if progression.IsInputError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			h.log.Error("mcp generate", "program", p, "error", err)
			return mcp.NewToolResultError("generation failed: " + err.Error()), nil
		}

		result, err := mcp.NewToolResultJSON(out)
		if err != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		return result, nil
	}
}

func (h *handlers) estimateOneRepMax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	formula, err := progression.ParseFormula(req.GetString("formula", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	est, err := progression.Estimate(weight, reps, formula)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(est)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.ds.History(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"entries": entries})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSavedProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("program")
	if err != nil {
		return mcp.NewToolResultError("program parameter is required"), nil
	}
	p, err := progression.ParseProgram(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	saved, err := h.ds.Latest(ctx, UserIDFromContext(ctx), p)
	if errors.Is(err, history.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no saved %s program", p)), nil
	}
	if err != nil {
		h.log.Error("mcp get_saved_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(saved)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
