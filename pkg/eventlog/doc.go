// Package eventlog is an always-on-top, click-through event log overlay.
//
// Application code sends short-lived events from any goroutine; the
// overlay shows them as a strip of recent cards, expands to the full
// history on request and hides itself after a period of inactivity. Input
// outside the cards and buttons it draws falls through to the host
// application.
//
// Quick start:
//
//	loop := uiloop.NewRunner(logger)
//	go loop.Run(ctx)
//
//	var log *eventlog.EventLog
//	_ = loop.Do(ctx, func() {
//	    log, _ = eventlog.New(loop)
//	    _ = log.Attach(host)
//	})
//
//	log.Log("Checkout", "") // CategoryAnalytics
//	log.Send("Payment failed", "card declined", eventlog.CategoryError)
//	log.SendParams("Purchase", map[string]any{"sku": "A-1", "qty": 2}, eventlog.CategoryMessage)
//
// All state lives on the UI loop. Send and its variants are safe to call
// from any goroutine; every other method must be called on the loop.
package eventlog
