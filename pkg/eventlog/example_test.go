package eventlog_test

import (
	"fmt"
	"log"
	"time"

	"github.com/jmylchreest/eventlog/internal/uiloop"
	"github.com/jmylchreest/eventlog/pkg/eventlog"
)

func ExampleFormatParams() {
	fmt.Println(eventlog.FormatParams(map[string]any{"b": 2, "a": 1}))
	// Output:
	// a: 1
	// b: 2
}

func Example() {
	loop := uiloop.NewManual(time.Date(2024, 3, 30, 9, 0, 0, 0, time.UTC))

	l, err := eventlog.New(loop)
	if err != nil {
		log.Fatal(err)
	}
	defer l.Close()

	for i := 1; i <= 6; i++ {
		l.Send(fmt.Sprintf("event %d", i), "", eventlog.CategoryAnalytics)
	}
	loop.Drain()

	fmt.Println(l.Machine().State(), len(l.Machine().Recent()))

	loop.Advance(5 * time.Second)
	fmt.Println(l.Machine().State(), len(l.Stream().Snapshot()))
	// Output:
	// collapsed 5
	// hidden 6
}
