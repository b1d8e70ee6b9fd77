// Package strindex embeds the strindex string store in a Go program.
//
// The client runs the same analysis, uniqueness and lookup rules as the HTTP
// service, in process, over Redis/Valkey, SQLite or Badger.
//
//	client, _ := strindex.New(ctx, strindex.WithSQLite("./data/strings.db"))
//	defer client.Close()
//
//	rec, _ := client.Create(ctx, "racecar")
//	fmt.Println(rec.ID, rec.Properties.IsPalindrome)
//
//	res, _ := client.List(ctx, strindex.Filters{MinLength: strindex.Int(5)})
//	phrase, _ := client.ListByPhrase(ctx, "all single word palindromic strings")
package strindex
