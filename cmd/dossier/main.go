// Command dossier runs guided character interview and embodiment sessions
// from the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/quillworks/dossier/internal/config"
	"github.com/quillworks/dossier/internal/generative"
	"github.com/quillworks/dossier/internal/interview"
	"github.com/quillworks/dossier/internal/models"
	"github.com/quillworks/dossier/internal/persist"
	"github.com/quillworks/dossier/internal/storage"
	"github.com/quillworks/dossier/internal/transcript"
	"github.com/quillworks/dossier/internal/types"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	mode := flag.String("mode", "interview", "session mode: interview, voice, or checkin")
	chapter := flag.String("chapter", "", "chapter context for check-in sessions")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()

	character, err := store.Characters.GetByID(ctx, cfg.CharacterID)
	if err != nil {
		log.Fatalf("failed to load character %d: %v", cfg.CharacterID, err)
	}

	model, err := buildModel(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize model: %v", err)
	}
	gen := generative.NewClient(model)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer rdb.Close()
	bridge := persist.NewBridge(rdb)
	defer bridge.Close()

	source := transcript.NewSource(8)
	go readStdin(source)

	switch *mode {
	case "interview":
		runInterview(ctx, character, gen, bridge, store.Characters, source)
	case generative.ModeVoice, generative.ModeCheckin:
		runEmbodiment(ctx, character, gen, store.Characters, source, *mode, *chapter)
	default:
		log.Fatalf("unknown mode %q (want interview, voice, or checkin)", *mode)
	}
}

func buildModel(ctx context.Context, cfg config.Config) (generative.Model, error) {
	switch cfg.Provider {
	case "gemini":
		return models.NewGeminiModel(ctx, cfg.LLMModel, cfg.GoogleAPIKey)
	case "grok":
		return models.NewGrokModel(cfg.LLMModel, cfg.XAIAPIKey)
	default:
		return models.NewOpenAIModel(cfg.LLMModel, cfg.OpenAIAPIKey)
	}
}

// readStdin feeds lines into the transcript source as final deliveries.
func readStdin(source *transcript.Source) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		source.Push(transcript.Event{Text: scanner.Text(), Final: true})
	}
	source.Close()
}

// nextLine blocks for the next submitted line. The second value is false when
// input has ended.
func nextLine(source *transcript.Source) (string, bool) {
	text, ok := <-source.Answers()
	return text, ok
}

func openController(ctx context.Context, character *types.Character, gen *generative.Client, bridge *persist.Bridge, records interview.CharacterRecords, source *transcript.Source) *interview.SessionController {
	snapshot, err := bridge.Load(ctx, strconv.Itoa(character.ID))
	if err != nil {
		slog.Error("failed to load stored session", "error", err.Error())
	}

	if snapshot != nil {
		ctrl, resumeErr := interview.ResumeSessionController(snapshot, character, gen, bridge, records)
		if resumeErr != nil {
			// A corrupt or finished snapshot is discarded, never fatal.
			slog.Warn("stored session is unusable, starting fresh", "error", resumeErr.Error())
		} else {
			fmt.Printf("You have an interview about %s in progress. Resume it? (yes to resume, anything else restarts)\n> ", character.Name())
			if line, ok := nextLine(source); ok && strings.EqualFold(strings.TrimSpace(line), "yes") {
				return ctrl
			}
		}
	}

	ctrl, err := interview.NewSessionController(character, gen, bridge, records)
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}
	return ctrl
}

func runInterview(ctx context.Context, character *types.Character, gen *generative.Client, bridge *persist.Bridge, records interview.CharacterRecords, source *transcript.Source) {
	ctrl := openController(ctx, character, gen, bridge, records, source)

	if ctrl.Status() == interview.StatusIntro {
		fmt.Println(ctrl.Intro())
		fmt.Print("\n(press enter to begin)\n> ")
		if _, ok := nextLine(source); !ok {
			ctrl.Close()
			return
		}
		question, err := ctrl.Start()
		if err != nil {
			log.Fatalf("failed to start session: %v", err)
		}
		fmt.Printf("\n%s\n> ", question)
	} else {
		if ctrl.Pending() == "" && ctrl.Status() == interview.StatusActive {
			if result, err := ctrl.RetryPrompt(ctx); err != nil {
				fmt.Printf("(couldn't pick the conversation back up: %v — press enter to retry)\n", err)
			} else {
				renderTurns(result.Turns)
			}
		}
		if ctrl.Pending() != "" {
			fmt.Printf("\n%s\n> ", ctrl.Pending())
		}
	}

	for ctrl.Status() == interview.StatusActive {
		answer, ok := nextLine(source)
		if !ok {
			ctrl.Close()
			fmt.Println("\n(session saved — you can pick this up any time)")
			return
		}
		if strings.EqualFold(strings.TrimSpace(answer), "/quit") {
			ctrl.Close()
			fmt.Println("(session saved — you can pick this up any time)")
			return
		}

		if ctrl.Pending() == "" {
			result, err := ctrl.RetryPrompt(ctx)
			if err != nil {
				fmt.Printf("(still stuck: %v — press enter to retry)\n> ", err)
				continue
			}
			renderTurns(result.Turns)
			fmt.Print("> ")
			continue
		}

		result, err := ctrl.Submit(ctx, strings.TrimSpace(answer))
		if err != nil {
			fmt.Printf("(%v — press enter to retry)\n> ", err)
			continue
		}
		renderTurns(result.Turns)
		if !result.AwaitingSynthesis {
			fmt.Print("> ")
		}
	}

	if ctrl.Status() == interview.StatusAwaitingSynthesis {
		runSynthesisReview(ctx, ctrl, source)
	}
}

func runSynthesisReview(ctx context.Context, ctrl *interview.SessionController, source *transcript.Source) {
	var review *interview.Review
	for review == nil {
		r, err := ctrl.Synthesize(ctx)
		if err != nil {
			fmt.Printf("(%v — press enter to retry, /quit to stop)\n> ", err)
			line, ok := nextLine(source)
			if !ok || strings.EqualFold(strings.TrimSpace(line), "/quit") {
				ctrl.Close()
				return
			}
			continue
		}
		review = r
	}

	fmt.Println("\n--- PROFILE ---")
	printField("Who they are", review.Profile.Description)
	printField("Core belief", review.Profile.CoreBelief)
	printField("Emotional function", review.Profile.PressureType)
	printField("Sensory anchor", review.Profile.SensoryAnchor)
	printField("Private self", review.Profile.PrivateSelf)
	printField("Unspoken reaction", review.Profile.UnspokenReaction)
	printField("Writer notes", review.Profile.Personality)
	for _, contradiction := range review.Contradictions {
		fmt.Printf("\n[tension] %s\n  \"%s\" vs \"%s\"\n", contradiction.Description, contradiction.FirstQuote, contradiction.SecondQuote)
	}
	for _, thread := range review.Threads {
		fmt.Printf("\n[thread] %s — %s", thread.Title, thread.Description)
		if thread.ChapterHint != "" {
			fmt.Printf(" (%s)", thread.ChapterHint)
		}
		fmt.Println()
	}

	fmt.Print("\nAccept this profile? (yes/no)\n> ")
	line, ok := nextLine(source)
	if ok && strings.EqualFold(strings.TrimSpace(line), "yes") {
		if err := ctrl.AcceptProfile(ctx); err != nil {
			fmt.Printf("(%v)\n", err)
			ctrl.Close()
			return
		}
		fmt.Println("Profile saved.")
		return
	}
	ctrl.Close()
	fmt.Println("(nothing written — the session is saved if you change your mind)")
}

func runEmbodiment(ctx context.Context, character *types.Character, gen *generative.Client, records interview.CharacterRecords, source *transcript.Source, mode, chapter string) {
	ctrl, err := interview.NewEmbodimentController(character, gen, records, mode, chapter)
	if err != nil {
		log.Fatalf("failed to create embodiment session: %v", err)
	}

	fmt.Println(ctrl.Intro())
	fmt.Println("(say /correct <note> to fix the voice, /quit to end)")
	fmt.Print("> ")

	for {
		line, ok := nextLine(source)
		if !ok {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if strings.EqualFold(line, "/quit") {
			break
		}

		var turn interview.EmbodiedTurn
		var sendErr error
		if rest, isCorrection := strings.CutPrefix(line, "/correct "); isCorrection {
			turn, sendErr = ctrl.CorrectVoice(ctx, strings.TrimSpace(rest))
		} else {
			turn, sendErr = ctrl.Send(ctx, line)
		}
		if sendErr != nil {
			fmt.Printf("(%v)\n> ", sendErr)
			continue
		}

		fmt.Printf("\n%s: %s\n", character.Name(), turn.Reply)

		if detail := ctrl.PendingDiscovery(); detail != "" {
			fmt.Printf("\n%s mentioned something new: %q. Keep it? (yes/no)\n> ", character.Name(), detail)
			choice, ok := nextLine(source)
			if ok && strings.EqualFold(strings.TrimSpace(choice), "yes") {
				if err := ctrl.ConfirmDiscovery(ctx); err != nil {
					fmt.Printf("(%v)\n", err)
				} else {
					fmt.Println("(added to the character record)")
				}
			} else {
				ctrl.DismissDiscovery()
				fmt.Println("(discarded)")
			}
		}

		if turn.Closing {
			fmt.Println("\n(check-in complete — go write the scene)")
			break
		}
		fmt.Print("> ")
	}

	if err := ctrl.Close(ctx); err != nil {
		slog.Error("failed to close embodiment session", "error", err.Error())
	}
}

func renderTurns(turns []interview.Turn) {
	for _, turn := range turns {
		switch turn.Kind {
		case interview.TurnThreadHint:
			fmt.Printf("\n[thread] %s\n", turn.Text)
		case interview.TurnContradictionFlag:
			fmt.Printf("\n[tension] %s\n", turn.Text)
		default:
			fmt.Printf("\n%s\n", turn.Text)
		}
	}
}

func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%s: %s\n", label, value)
}
