package transcript

import "testing"

func TestOnlyFinalEventsSubmit(t *testing.T) {
	source := NewSource(2)
	source.Push(Event{Text: "she was"})
	source.Push(Event{Text: "she was always"})
	if got := source.Preview(); got != "she was always" {
		t.Fatalf("unexpected preview: %q", got)
	}

	select {
	case answer := <-source.Answers():
		t.Fatalf("non-final events must not submit, got %q", answer)
	default:
	}

	source.Push(Event{Text: "she was always the one who stayed.", Final: true})
	answer := <-source.Answers()
	if answer != "she was always the one who stayed." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if source.Preview() != "" {
		t.Fatal("preview must reset after a final delivery")
	}
}

func TestFinalWithEmptyTextUsesPartial(t *testing.T) {
	source := NewSource(1)
	source.Push(Event{Text: "half a thought"})
	source.Push(Event{Final: true})

	answer := <-source.Answers()
	if answer != "half a thought" {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestZeroNonFinalDeliveries(t *testing.T) {
	source := NewSource(1)
	source.Push(Event{Text: "typed directly.", Final: true})
	if answer := <-source.Answers(); answer != "typed directly." {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestEmptyFinalIsDropped(t *testing.T) {
	source := NewSource(1)
	source.Push(Event{Text: "   ", Final: true})
	select {
	case answer := <-source.Answers():
		t.Fatalf("empty final must not submit, got %q", answer)
	default:
	}
}

func TestCloseIgnoresLaterPushes(t *testing.T) {
	source := NewSource(1)
	source.Close()
	source.Push(Event{Text: "too late.", Final: true})
	if _, ok := <-source.Answers(); ok {
		t.Fatal("expected closed answers channel")
	}
}
