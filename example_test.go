package bind_test

import (
	"fmt"
	"time"

	"github.com/AnatoleLucet/bind"
	"github.com/AnatoleLucet/bind/loop"
	"github.com/AnatoleLucet/bind/value"
	"github.com/AnatoleLucet/bind/widget"
)

func ExampleBind() {
	name := bind.NewSource("Ada")
	label := widget.NewObject("Label", widget.Prop("text", value.String("")))

	_, err := bind.Bind(name, label, "text")
	if err != nil {
		panic(err)
	}
	fmt.Println(label.Get("text"))

	name.Set("Grace")
	fmt.Println(label.Get("text"))

	// Output:
	// Ada
	// Grace
}

func ExampleNewBinding() {
	count := bind.NewSource(42)
	label := widget.NewObject("Label", widget.Prop("text", value.String("")))

	_, err := bind.NewBinding[int, string](count, label, "text",
		bind.Map(func(n int) string { return fmt.Sprintf("Number: %d", n) }),
	)
	if err != nil {
		panic(err)
	}
	fmt.Println(label.Get("text"))

	count.Set(100)
	fmt.Println(label.Get("text"))

	// Output:
	// Number: 42
	// Number: 100
}

func ExampleNewComputedBinding() {
	width := bind.NewSource(3)
	height := bind.NewSource(4)
	label := widget.NewObject("Label", widget.Prop("text", value.String("")))

	_, err := bind.NewComputedBinding(func() (string, error) {
		return fmt.Sprintf("%dx%d = %d", width.Get(), height.Get(), width.Get()*height.Get()), nil
	}, label, "text", bind.WithDependencies(width, height))
	if err != nil {
		panic(err)
	}

	width.Set(5)
	fmt.Println(label.Get("text"))

	// Output: 5x4 = 20
}

func ExampleWithUpdateMode() {
	sched := loop.NewManual()
	query := bind.NewSource("")
	search := widget.NewObject("SearchBox", widget.Prop("query", value.String("")))

	_, err := bind.Bind(query, search, "query",
		bind.WithScheduler(sched),
		bind.WithUpdateMode(bind.Deferred),
		bind.WithDebounce(50*time.Millisecond),
	)
	if err != nil {
		panic(err)
	}

	for _, q := range []string{"g", "go", "gop", "goph", "gopher"} {
		query.Set(q)
		sched.Advance(10 * time.Millisecond)
	}
	fmt.Printf("%q\n", search.Get("query").String())

	sched.Advance(50 * time.Millisecond)
	fmt.Printf("%q\n", search.Get("query").String())

	// Output:
	// ""
	// "gopher"
}
