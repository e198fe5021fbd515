// Package wordcache provides a cache-aside translation gateway for vocabulary
// lists.
//
// A Gateway looks every word up in a persistent CacheStore, sends the misses
// to a BatchProvider in fixed-size batches, retries a failing batch once, and
// writes each translation back to the store before returning it.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/wordcache"
//	    "github.com/ZaguanLabs/wordcache/cache"
//	    "github.com/ZaguanLabs/wordcache/provider"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    store, err := cache.Open(ctx, cache.StoreConfig{Driver: "sqlite", Path: "translations.db"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer store.Close()
//
//	    p := provider.NewGoogleProvider(provider.GoogleConfig{
//	        APIKey: os.Getenv("GOOGLE_TRANSLATE_API_KEY"),
//	    })
//
//	    gw, err := wordcache.NewGateway(store, p, wordcache.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    translations, err := gw.Translate(ctx, []string{"Haus", "Hund"}, "de", "en")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(translations) // map[Haus:house Hund:dog]
//	}
package wordcache
