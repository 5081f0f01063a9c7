package addressscanner_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhuweiyou/addressscanner"
)

func ExampleCompile() {
	p, err := addressscanner.Compile("48 8b 05 ?? ?? ?? ?? 48 8B D9")
	if err != nil {
		panic(err)
	}
	fmt.Println(p, p.Len())

	_, err = addressscanner.Compile("48 8B 5")
	fmt.Println(errors.Is(err, addressscanner.ErrInvalidToken))
	// Output:
	// 48 8B 05 ? ? ? ? 48 8B D9 10
	// true
}

func ExampleRegistry() {
	module := []byte{
		0x90, 0x90, 0x48, 0x8B, 0x05, 0x10, 0x20, 0x30,
		0x40, 0x48, 0x8B, 0xD9, 0xC3, 0xE8, 0x00, 0x00,
	}
	locator := addressscanner.Static(0x140000000, module)

	registry := addressscanner.NewRegistry(addressscanner.NewResolver(locator))
	registry.MustRegister(addressscanner.AddressRecord{
		Name:    "global_ptr",
		Pattern: "48 8B 05 ?? ?? ?? ?? 48 8B D9",
		Offset:  3,
	})
	registry.MustRegister(addressscanner.AddressRecord{
		Name:    "prologue",
		Pattern: "90 90",
		Offset:  -1,
		Policy:  addressscanner.PolicyUnique,
	})
	registry.MustRegister(addressscanner.AddressRecord{
		Name:    "missing",
		Pattern: "CC CC",
	})

	for _, res := range registry.ResolveAll(context.Background()) {
		if res.Err != nil {
			fmt.Printf("%s: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Printf("%s: %s\n", res.Name, res.Address)
	}
	// Output:
	// global_ptr: 0x140000005
	// prologue: 0x13FFFFFFF
	// missing: pattern not found
}
