// Package tlrouter provides vendor-neutral AI translation with fallback routing.
//
// Tlrouter sends a translation (or a vocabulary, grammar or nuance analysis) to
// one of several AI vendors through a uniform Adapter contract, walks an ordered
// routing plan when a vendor is congested, normalizes loosely-structured model
// output, and tears down in-flight requests when the caller cancels.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/tlrouter"
//	    "github.com/ZaguanLabs/tlrouter/keystore"
//	    "github.com/ZaguanLabs/tlrouter/provider"
//	)
//
//	func main() {
//	    router := tlrouter.NewRouter(provider.NewRegistry(),
//	        tlrouter.WithKeyStore(keystore.NewEnv()),
//	    )
//
//	    plan := tlrouter.RoutingPlan{
//	        {Provider: tlrouter.ProviderGroq},
//	        {Provider: tlrouter.ProviderGemini, Model: "gemini-2.0-flash"},
//	    }
//
//	    res, err := router.RouteTranslate(context.Background(), tlrouter.TranslationRequest{
//	        Text:       "Good morning",
//	        SourceLang: "en",
//	        TargetLang: "es",
//	    }, plan, 2)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Result.Translation, res.Provider, res.Model)
//	}
package tlrouter
