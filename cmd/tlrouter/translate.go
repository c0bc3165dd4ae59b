package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/tlrouter"
)

func newTranslateCmd(a *app) *cobra.Command {
	var (
		flags      stepFlags
		from, to   string
		analysis   string
		explain    string
		jsonOutput bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "translate [flags] TEXT|-",
		Short: "Translate text through the routing plan",
		Example: `  tlrouter translate --to es "Good morning"
  echo "Bonjour" | tlrouter translate --to en --provider gemini -
  tlrouter translate --to ja --analysis grammar "I would like a coffee"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(a.stdin, args)
			if err != nil {
				return err
			}

			req := tlrouter.TranslationRequest{
				Text:            text,
				SourceLang:      from,
				TargetLang:      to,
				Task:            tlrouter.TaskTranslate,
				ExplanationLang: explain,
			}
			if analysis != "" {
				req.Task = tlrouter.TaskAnalyze
				req.Analysis = tlrouter.AnalysisKind(analysis)
			}

			rt, err := a.setup(cmd.Context(), &flags, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			start := time.Now()
			res, err := rt.router.RouteTranslate(cmd.Context(), req, rt.plan, rt.depth)
			if err != nil {
				return err
			}

			return a.printResult(res, time.Since(start), jsonOutput, quiet)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&from, "from", "auto", "Source language code")
	cmd.Flags().StringVar(&to, "to", "", "Target language code (required)")
	cmd.Flags().StringVar(&analysis, "analysis", "", "Also analyze: vocabulary, grammar or nuance")
	cmd.Flags().StringVar(&explain, "explain", "", "Language for analysis explanations (default: source language)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress routing details on stderr")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		flags       stepFlags
		from, to    string
		kind        string
		translation string
		explain     string
		jsonOutput  bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [flags] TEXT|-",
		Short: "Explain the vocabulary, grammar or nuance of a translation",
		Example: `  tlrouter analyze --from ja --to en --kind vocabulary --translation "I like cats" "猫が好き"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(a.stdin, args)
			if err != nil {
				return err
			}

			req := tlrouter.AnalysisRequest{
				SourceText:      text,
				TranslatedText:  translation,
				SourceLang:      from,
				TargetLang:      to,
				ExplanationLang: explain,
				Kind:            tlrouter.AnalysisKind(kind),
			}

			rt, err := a.setup(cmd.Context(), &flags, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			start := time.Now()
			res, err := rt.router.RouteAnalyze(cmd.Context(), req, rt.plan, rt.depth)
			if err != nil {
				return err
			}

			return a.printResult(res, time.Since(start), jsonOutput, quiet)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&from, "from", "auto", "Source language code")
	cmd.Flags().StringVar(&to, "to", "", "Target language code (required)")
	cmd.Flags().StringVar(&kind, "kind", string(tlrouter.AnalysisVocabulary), "Analysis kind: vocabulary, grammar or nuance")
	cmd.Flags().StringVar(&translation, "translation", "", "Existing translation of TEXT")
	cmd.Flags().StringVar(&explain, "explain", "", "Language for explanations (default: source language)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress routing details on stderr")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	*tlrouter.RouteResult
	ElapsedMs int64 `json:"elapsed_ms"`
}

func (a *app) printResult(res *tlrouter.RouteResult, elapsed time.Duration, jsonOutput, quiet bool) error {
	if jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(JSONOutput{RouteResult: res, ElapsedMs: elapsed.Milliseconds()})
	}

	writeResult(a.stdout, &res.Result)

	if !quiet {
		fmt.Fprintf(a.stderr, "\nvia %s/%s in %v (step %d)\n", res.Provider, res.Model, elapsed.Round(time.Millisecond), res.Attempts)
	}
	return nil
}

// writeResult prints the populated parts of r in a readable layout.
func writeResult(w io.Writer, r *tlrouter.TranslationResult) {
	if r.Translation != "" {
		fmt.Fprintln(w, r.Translation)
	}

	if len(r.Words) > 0 {
		fmt.Fprintln(w, "\nVocabulary:")
		for _, word := range r.Words {
			fmt.Fprintf(w, "  %s -> %s: %s\n", word.Original, word.Translated, word.Meaning)
		}
	}

	if g := r.Grammar; g != nil {
		fmt.Fprintln(w, "\nGrammar:")
		if g.Structure != "" {
			fmt.Fprintf(w, "  %s\n", g.Structure)
		}
		for _, p := range g.Points {
			fmt.Fprintf(w, "  - %s (%q): %s\n", p.Point, p.Quote, p.Explanation)
		}
		if g.Politeness != "" {
			fmt.Fprintf(w, "  Politeness: %s\n", g.Politeness)
		}
	}

	if n := r.Nuance; n != nil {
		fmt.Fprintln(w, "\nNuance:")
		if n.Tone != "" {
			fmt.Fprintf(w, "  Tone: %s\n", n.Tone)
		}
		if n.CulturalContext != "" {
			fmt.Fprintf(w, "  Context: %s\n", n.CulturalContext)
		}
		for _, alt := range n.Alternatives {
			fmt.Fprintf(w, "  - %s (instead of %q): %s\n", alt.Phrase, alt.Original, alt.Reason)
		}
	}

	if r.IsEmpty() {
		fmt.Fprintln(w, "(empty result)")
	}
}
