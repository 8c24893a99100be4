// Package gmail reads messages under a Gmail label and turns them into
// plain-text fields.
//
// API responses are decoded once, at the boundary, into Label, Message and a
// small MIME tree (Part with its two variants Leaf and Multipart). Everything
// after that works on those types only:
//
//	client, err := gmail.NewClient(ctx, provider, gmail.WithMetrics(m))
//	labelID, err := client.ResolveLabel(ctx, "internships")
//	ids, err := client.ListMessageIDs(ctx, labelID)
//	for _, id := range ids {
//	    fields, err := client.FetchFields(ctx, id)
//	    ...
//	}
//
// Body extraction prefers text/plain over text/html and falls back to the
// message snippet. HTML is reduced to text by a handful of regular
// expressions; it is not parsed and entities are left as they are.
package gmail
