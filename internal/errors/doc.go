// Package errors provides structured, coded errors for toastd.
//
// Every error carries a code (e.g. "T001") that maps to a registered
// template with a category, a short message, and a longer detail:
//
//	err := errors.New("T001").
//	    WithDetail("document has no <body> element").
//	    WithSuggestion("Render the page template with a <body> before notifying")
//
//	fmt.Println(err.Format())
//	// ERROR T001: Toast container unavailable
//	//
//	//   document has no <body> element
//	//
//	//   Hint: Render the page template with a <body> before notifying
//
// Use HasCode to test for a specific failure anywhere in a wrap chain.
package errors
