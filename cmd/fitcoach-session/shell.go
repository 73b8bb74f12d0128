package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/claude/fitcoach/internal/api"
	"github.com/claude/fitcoach/internal/authstate"
	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/resttimer"
	"github.com/claude/fitcoach/internal/schedule"
	"github.com/claude/fitcoach/internal/session"
	"github.com/google/uuid"
)

// remote is what the shell needs from the server. *api.Client satisfies it.
type remote interface {
	session.Backend
	ListAssignments(ctx context.Context, clientID uuid.UUID) ([]models.AssignmentSummary, error)
	Me(ctx context.Context) (*models.Identity, error)
}

var _ remote = (*api.Client)(nil)

const helpText = `commands:
  login <api-key>            store the key used for every request
  logout                     forget the stored key
  me                         show who the server thinks you are
  list <client-id>           list a client's assignments
  open <assignment-id|#n>    load an assignment (#n picks from the last list)
  start                      start the workout
  show                       print the workout
  toggle <ex>                expand or collapse exercise number ex
  reps <ex> <set> <value>    edit reps for a set
  weight <ex> <set> <value>  edit weight for a set
  done <ex> <set>            log a set as completed
  rest <ex>                  start the rest timer for an exercise
  pause | resume | skip      control the rest timer
  finish                     finish the workout
  leave                      close the workout
  quit                       exit`

type shell struct {
	remote remote
	tokens authstate.Store
	sched  schedule.Scheduler
	log    *slog.Logger

	in    *bufio.Scanner
	outMu sync.Mutex
	out   io.Writer

	ctrl *session.Controller
	list []models.AssignmentSummary
}

func newShell(r remote, tokens authstate.Store, sched schedule.Scheduler, in io.Reader, out io.Writer, log *slog.Logger) *shell {
	return &shell{
		remote: r,
		tokens: tokens,
		sched:  sched,
		log:    log,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// printf serializes output from the command loop and timer callbacks.
func (s *shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// run reads commands until EOF or quit.
func (s *shell) run(ctx context.Context) {
	defer s.closeWorkout()
	s.printf("fitcoach session shell; type help for commands\n")
	for {
		s.printf("> ")
		if !s.in.Scan() {
			return
		}
		fields := strings.Fields(s.in.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			if s.leave() {
				return
			}
			continue
		}
		if err := s.exec(ctx, fields[0], fields[1:]); err != nil {
			s.printf("error: %v\n", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
		return nil
	case "login":
		return s.login(ctx, args)
	case "logout":
		if err := s.tokens.Clear(ctx); err != nil {
			return err
		}
		s.printf("logged out\n")
		return nil
	case "me":
		me, err := s.remote.Me(ctx)
		if err != nil {
			return err
		}
		s.printf("%s (%s) via %s\n", me.Login, me.DisplayName, me.Source)
		return nil
	case "list":
		return s.listAssignments(ctx, args)
	case "open":
		return s.open(ctx, args)
	case "leave":
		s.leave()
		return nil
	}

	if s.ctrl == nil {
		return errors.New("no workout open; use open first")
	}

	switch cmd {
	case "start":
		if err := s.ctrl.Start(ctx); err != nil {
			return err
		}
		s.show()
		return nil
	case "show":
		s.show()
		return nil
	case "toggle":
		ex, err := s.exerciseArg(args, 1)
		if err != nil {
			return err
		}
		if err := s.ctrl.ToggleExercise(ex); err != nil {
			return err
		}
		s.show()
		return nil
	case "reps", "weight":
		ex, set, err := s.setArgs(args, 3)
		if err != nil {
			return err
		}
		if cmd == "reps" {
			return s.ctrl.UpdateReps(ex, set, args[2])
		}
		return s.ctrl.UpdateWeight(ex, set, args[2])
	case "done":
		ex, set, err := s.setArgs(args, 2)
		if err != nil {
			return err
		}
		return s.ctrl.CompleteSet(ctx, ex, set)
	case "rest":
		ex, err := s.exerciseArg(args, 1)
		if err != nil {
			return err
		}
		return s.ctrl.StartRest(ex)
	case "pause":
		if !s.ctrl.Rest().Pause() {
			return errors.New("no running rest timer")
		}
		return nil
	case "resume":
		if !s.ctrl.Rest().Resume() {
			return errors.New("rest timer is not paused")
		}
		return nil
	case "skip":
		if !s.ctrl.Rest().Skip() {
			return errors.New("no rest timer to skip")
		}
		return nil
	case "finish":
		_, err := s.ctrl.Finish(ctx)
		return err
	default:
		return fmt.Errorf("unknown command %q; type help", cmd)
	}
}

func (s *shell) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: login <api-key>")
	}
	if err := s.tokens.SetToken(ctx, args[0]); err != nil {
		return err
	}
	me, err := s.remote.Me(ctx)
	if err != nil {
		return fmt.Errorf("key stored but the server did not answer: %w", err)
	}
	s.printf("logged in as %s\n", me.Login)
	return nil
}

func (s *shell) listAssignments(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: list <client-id>")
	}
	clientID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}
	list, err := s.remote.ListAssignments(ctx, clientID)
	if err != nil {
		return err
	}
	s.list = list
	if len(list) == 0 {
		s.printf("no assignments\n")
		return nil
	}
	for i, a := range list {
		s.printf("#%d  %-24s %-11s %d sets logged  %s\n", i+1, a.WorkoutName, a.Status, a.LoggedSets, a.ID)
	}
	return nil
}

func (s *shell) open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: open <assignment-id|#n>")
	}
	id, err := s.resolveAssignment(args[0])
	if err != nil {
		return err
	}
	if s.ctrl != nil && !s.leave() {
		return nil
	}
	ctrl, err := session.Load(ctx, s.remote, id, session.Options{
		Scheduler: s.sched,
		Listener:  s.onEvent,
		Logger:    s.log,
	})
	if err != nil {
		return err
	}
	s.ctrl = ctrl
	s.show()
	return nil
}

func (s *shell) resolveAssignment(arg string) (uuid.UUID, error) {
	if n, ok := strings.CutPrefix(arg, "#"); ok {
		i, err := strconv.Atoi(n)
		if err != nil || i < 1 || i > len(s.list) {
			return uuid.Nil, fmt.Errorf("no assignment %s in the last list", arg)
		}
		return s.list[i-1].ID, nil
	}
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid assignment id: %w", err)
	}
	return id, nil
}

// leave closes the open workout, asking first while it is active.
func (s *shell) leave() bool {
	if s.ctrl == nil {
		return true
	}
	ok := s.ctrl.Leave(func() bool {
		s.printf("Leave workout? Logged sets are saved. [y/N] ")
		if !s.in.Scan() {
			return true
		}
		answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
		return answer == "y" || answer == "yes"
	})
	if ok {
		s.ctrl = nil
	}
	return ok
}

func (s *shell) closeWorkout() {
	if s.ctrl != nil {
		s.ctrl.Close()
		s.ctrl = nil
	}
}

func (s *shell) exerciseArg(args []string, want int) (uuid.UUID, error) {
	if len(args) != want {
		return uuid.Nil, fmt.Errorf("expected %d argument(s)", want)
	}
	n, err := strconv.Atoi(args[0])
	snap := s.ctrl.Snapshot()
	if err != nil || n < 1 || n > len(snap.Session.Exercises) {
		return uuid.Nil, fmt.Errorf("no exercise %s", args[0])
	}
	return snap.Session.Exercises[n-1].ExerciseID, nil
}

func (s *shell) setArgs(args []string, want int) (uuid.UUID, int, error) {
	if len(args) != want {
		return uuid.Nil, 0, fmt.Errorf("expected %d arguments", want)
	}
	ex, err := s.exerciseArg(args[:1], 1)
	if err != nil {
		return uuid.Nil, 0, err
	}
	set, err := strconv.Atoi(args[1])
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("invalid set number %q", args[1])
	}
	return ex, set, nil
}

func (s *shell) show() {
	snap := s.ctrl.Snapshot()
	ws := snap.Session

	var b strings.Builder
	fmt.Fprintf(&b, "%s  [%s]  %s  %d/%d sets (%d%%)\n",
		ws.WorkoutName, ws.Status, resttimer.Format(ws.ElapsedSeconds),
		snap.CompletedSets, snap.TotalSets, snap.CompletionRate)
	for i, ex := range ws.Exercises {
		marker := " "
		if ex.ExerciseID == snap.Expanded {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %d. %s  %d/%d sets  rest %ds\n", marker, i+1, ex.Name, ex.CompletedSets(), ex.TargetSets, ex.RestSeconds)
		if ex.ExerciseID != snap.Expanded {
			continue
		}
		for _, l := range ex.Logs {
			check := "[ ]"
			if l.Completed {
				check = "[x]"
			}
			fmt.Fprintf(&b, "     %s set %d  %d reps  %g kg\n", check, l.SetNumber, l.RepsCompleted, l.WeightUsed)
		}
	}
	if snap.Rest.Visible {
		fmt.Fprintf(&b, "rest %s  %s  %s\n", resttimer.Format(snap.Rest.RemainingSeconds), resttimer.BandFor(snap.Rest.RemainingSeconds), resttimer.Status(snap.Rest))
	}
	s.printf("%s", b.String())
}

// onEvent runs on the controller's callers and timer goroutines.
func (s *shell) onEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventSetCompleted:
		s.printf("set %d logged\n", ev.SetNumber)
	case session.EventRestStarted:
		s.printf("rest %s\n", resttimer.Format(ev.RestSeconds))
	case session.EventAutoAdvanced:
		s.printf("moving to the next exercise\n")
	case session.EventRest:
		switch ev.Rest.Kind {
		case resttimer.EventCue:
			s.printf("\a%d...\n", ev.Rest.Remaining)
		case resttimer.EventExpired:
			s.printf("\arest complete\n")
		case resttimer.EventPaused:
			s.printf("rest paused at %s\n", resttimer.Format(ev.Rest.Remaining))
		case resttimer.EventResumed:
			s.printf("rest resumed\n")
		case resttimer.EventClosed:
			if ev.Rest.Skipped {
				s.printf("rest skipped\n")
			}
		}
	case session.EventFinished:
		if ev.Summary != nil {
			s.printSummary(*ev.Summary, ev.Err)
		}
	}
}

func (s *shell) printSummary(sum session.Summary, err error) {
	s.printf("\n%s\n", sum.Message)
	s.printf("%s: %d/%d sets (%d%%) in %d min\n", sum.WorkoutName, sum.CompletedSets, sum.TotalSets, sum.CompletionRate, sum.DurationMinutes)
	if err != nil {
		s.printf("the server has not recorded this yet; run finish again to retry\n")
	}
}
