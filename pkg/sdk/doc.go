// Package playmatch embeds the playmatch matching engine in a Go program
// without running the HTTP server.
//
// The client scores songs against playlist profiles, caches results in
// memory keyed by a content hash of the request, and optionally persists
// them per account in Redis or SQLite.
//
//	client, _ := playmatch.New(ctx,
//	    playmatch.WithSQLite("./data/playmatch.db"),
//	    playmatch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	res, _ := client.Match(ctx, playmatch.MatchRequest{
//	    AccountID:  "acct-1",
//	    Songs:      songs,
//	    Profiles:   profiles,
//	    Embeddings: songVectors,
//	})
//	for songID, ranked := range res.Matches {
//	    fmt.Println(songID, ranked[0].PlaylistID, ranked[0].Score)
//	}
//
// Playlist edits should be followed by Invalidate with the changed playlist IDs.
package playmatch
