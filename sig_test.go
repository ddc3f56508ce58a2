package sig_test

import (
	"fmt"

	"github.com/AnatoleLucet/sig"
)

func ExampleSignal() {
	d := sig.NewDomain()
	count := sig.NewSignal(d, 0)
	fmt.Println(count.Read())

	count.Write(10)
	fmt.Println(count.Read())

	// Output:
	// 0
	// 10
}

func ExampleComputed() {
	d := sig.NewDomain()
	count := sig.NewSignal(d, 1)
	double := sig.NewComputed(d, func() int {
		fmt.Println("doubling")
		return count.Read() * 2
	})
	plustwo := sig.NewComputed(d, func() int {
		fmt.Println("adding")
		return double.Read() + 2
	})
	fmt.Println(count.Read())
	fmt.Println(double.Read())
	fmt.Println(plustwo.Read())

	count.Write(10)
	fmt.Println(count.Read())
	fmt.Println(double.Read())
	fmt.Println(plustwo.Read())

	// Output:
	// doubling
	// adding
	// 1
	// 2
	// 4
	// doubling
	// adding
	// 10
	// 20
	// 22
}

func ExampleEffect() {
	d := sig.NewDomain()
	count := sig.NewSignal(d, 0)

	sig.NewEffect(d, func() func() {
		fmt.Println("count is", count.Read())
		return nil
	})

	count.Write(1)

	// Output:
	// count is 0
	// count is 1
}
