package dfsenv_test

import (
	"fmt"

	"github.com/hupe1980/dfsenv"
	"github.com/hupe1980/dfsenv/backend/memfs"
)

func ExampleEnv() {
	env := dfsenv.NewEnv(memfs.New())

	w, err := env.NewWritableFile("/db/000001.log")
	if err != nil {
		panic(err)
	}
	if err := w.Append([]byte("record one")); err != nil {
		panic(err)
	}
	if err := w.Sync(); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}

	r, err := env.NewSequentialFile("/db/000001.log")
	if err != nil {
		panic(err)
	}
	defer r.Close()

	scratch := make([]byte, 32)
	data, err := r.Read(32, scratch)
	if err != nil {
		panic(err)
	}

	fmt.Println(string(data))
	// Output: record one
}

func ExampleEnv_GetChildren() {
	env := dfsenv.NewEnv(memfs.New())

	if err := env.CreateDirIfMissing("/db"); err != nil {
		panic(err)
	}
	for _, name := range []string{"/db/CURRENT", "/db/MANIFEST-000001"} {
		w, err := env.NewWritableFile(name)
		if err != nil {
			panic(err)
		}
		if err := w.Close(); err != nil {
			panic(err)
		}
	}

	children, err := env.GetChildren("/db")
	if err != nil {
		panic(err)
	}

	for _, child := range children {
		fmt.Println(child)
	}
	// Output:
	// CURRENT
	// MANIFEST-000001
}
