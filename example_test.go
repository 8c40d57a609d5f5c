package bitsieve_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/bitsieve"
)

// Example demonstrates one sieve cycle with a function reporter.
func Example() {
	e, err := bitsieve.New(30)
	if err != nil {
		log.Fatal(err)
	}
	defer e.Close()

	sep := ""
	_, err = e.Run(context.Background(), bitsieve.ReporterFuncs{
		Prime: func(p uint32) {
			fmt.Print(sep, p)
			sep = " "
		},
		Summary: func(count, bound uint32) {
			fmt.Printf("\nFound %d primes between 0 and %d\n", count, bound)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	// Output:
	// 2 3 5 7 11 13 17 19 23 29
	// Found 10 primes between 0 and 30
}

// ExampleSieve counts the primes below the reference bound.
func ExampleSieve() {
	s, err := bitsieve.Sieve(context.Background(), bitsieve.DefaultBound, bitsieve.Discard)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(s.Count)
	// Output: 1229
}
