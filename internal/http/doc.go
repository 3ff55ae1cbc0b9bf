// Package http exposes navigation, tag and layout endpoints on a chi router.
//
// Routes:
//   - GET  /navigation/{menu}       resolved menu entries with an active flag
//   - GET  /navigation/{menu}/tree  entries with sub-menus expanded
//   - GET  /pages/{slug}/alternates the page URL in every locale
//   - GET  /tags/{set}              tags in use, paginated, optional ?type=
//   - POST /layout/validate         layout document schema and field checks
//
// {menu} accepts a menu id, code or title. The locale comes from ?locale=
// when it names a known locale, otherwise from Accept-Language.
package http
