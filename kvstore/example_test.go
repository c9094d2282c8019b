package kvstore_test

import (
	"fmt"

	"github.com/IvanBrykalov/shardkv/kvstore"
)

func Example() {
	st, err := kvstore.New(kvstore.Options{Capacity: 2, Shards: 1})
	if err != nil {
		panic(err)
	}
	defer func() { _ = st.Close() }()

	_ = st.Put([]byte("a"), []byte("1"))
	_ = st.Put([]byte("b"), []byte("2"))
	st.Get([]byte("a"))                  // "a" is now most recently used
	_ = st.Put([]byte("c"), []byte("3")) // evicts "b"

	for _, k := range []string{"a", "b", "c"} {
		v, ok := st.Get([]byte(k))
		fmt.Printf("%s=%s %v\n", k, v, ok)
	}
	fmt.Println("size:", st.Size())
	// Output:
	// a=1 true
	// b= false
	// c=3 true
	// size: 2
}

func ExampleBoundError() {
	st := kvstore.MustNew(kvstore.Options{Capacity: 8, MaxKeyLen: 4})
	err := st.Put([]byte("too-long"), []byte("v"))
	fmt.Println(err)
	// Output: kvstore: key length 8 exceeds bound 4
}
