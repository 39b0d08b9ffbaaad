// Package ioroutes recovers the API route inventory from JavaScript
// and TypeScript request handlers. Extraction is pattern-based: it
// reads router registrations, ORM calls and raw SQL strings without
// parsing the host language. This is an impure I/O package that
// implements contracts defined in pkg/.
package ioroutes

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/routes"
)

var (
	// app.get('/api/widgets/:id', handler) and friends, on any
	// router-like receiver (app, router, r, api...). The quoted
	// first argument separates these from map.get(key) lookups.
	routeCallRe = regexp.MustCompile(
		"(?m)\\b[A-Za-z_$][\\w$]*\\.(get|post|put|patch|delete)" +
			"\\s*\\(\\s*['\"`]([^'\"`]+)['\"`]")

	// @Get('/widgets') style controller decorators.
	decoratorRe = regexp.MustCompile(
		`@(Get|Post|Put|Patch|Delete)\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`)

	// prisma.widget.findUnique(...) style ORM chains. The member
	// before the verb names the model.
	ormCallRe = regexp.MustCompile(
		`\b\w+\.(\w+)\.` +
			`(findMany|findUnique|findFirst|` +
			`create|createMany|upsert|` +
			`update|updateMany|delete|deleteMany)\s*\(`)

	// Raw SQL inside string literals. First match per statement kind.
	selectRe = regexp.MustCompile(
		"(?is)\\bSELECT\\b.*?\\bFROM\\s+[`\"']?(\\w+)")
	insertRe = regexp.MustCompile(
		"(?i)\\bINSERT\\s+INTO\\s+[`\"']?(\\w+)")
	updateRe = regexp.MustCompile(
		"(?is)\\bUPDATE\\s+[`\"']?(\\w+)[`\"']?\\s+SET\\b")
	deleteRe = regexp.MustCompile(
		"(?i)\\bDELETE\\s+FROM\\s+[`\"']?(\\w+)")

	// res.status(404), res.sendStatus(204) and reply.code(201).
	statusRe = regexp.MustCompile(
		`\.(?:send[Ss]tatus|status|code)\s*\(\s*(\d{3})\s*\)`)
)

// ormOperation maps an ORM verb to the database operation it implies.
var ormOperation = map[string]routes.OperationType{
	"findMany":   routes.OpSelect,
	"findUnique": routes.OpSelect,
	"findFirst":  routes.OpSelect,
	"create":     routes.OpInsert,
	"createMany": routes.OpInsert,
	"upsert":     routes.OpInsert,
	"update":     routes.OpUpdate,
	"updateMany": routes.OpUpdate,
	"delete":     routes.OpDelete,
	"deleteMany": routes.OpDelete,
}

// ExtractRoutes recovers routes from one source file. Each route owns
// the text between its registration and the next one; operations and
// status codes are inferred from that block.
func ExtractRoutes(src, sourceFile string) []routes.ApiRoute {
	marks := routeMarks(src)
	if len(marks) == 0 {
		return nil
	}

	var rr []routes.ApiRoute
	for i, mark := range marks {
		end := len(src)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		block := src[mark.start:end]

		r := routes.ApiRoute{
			Method:      mark.method,
			Path:        mark.path,
			SourceFile:  sourceFile,
			Operations:  blockOperations(block),
			StatusCodes: blockStatusCodes(block),
		}
		r.Parameters = routes.PathParams(r.Path)
		rr = append(rr, r)
	}
	return rr
}

type routeMark struct {
	start  int
	method routes.Method
	path   string
}

// routeMarks finds every route registration in order of appearance,
// from router calls and controller decorators alike.
func routeMarks(src string) []routeMark {
	var marks []routeMark

	for _, m := range routeCallRe.FindAllStringSubmatchIndex(src, -1) {
		marks = append(marks, routeMark{
			start:  m[0],
			method: routes.Method(strings.ToUpper(src[m[2]:m[3]])),
			path:   src[m[4]:m[5]],
		})
	}
	for _, m := range decoratorRe.FindAllStringSubmatchIndex(src, -1) {
		path := "/"
		if m[4] >= 0 && m[5] > m[4] {
			path = src[m[4]:m[5]]
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		marks = append(marks, routeMark{
			start:  m[0],
			method: routes.Method(strings.ToUpper(src[m[2]:m[3]])),
			path:   path,
		})
	}

	sort.Slice(marks, func(i, j int) bool {
		return marks[i].start < marks[j].start
	})
	return marks
}

// blockOperations infers database operations from a handler block.
// ORM calls contribute one operation each; raw SQL contributes the
// first statement of each kind.
func blockOperations(block string) []routes.DatabaseOperation {
	var ops []routes.DatabaseOperation
	seen := map[string]bool{}

	add := func(typ routes.OperationType, table string) {
		key := string(typ) + "|" + table
		if table == "" || seen[key] {
			return
		}
		seen[key] = true
		ops = append(ops, routes.DatabaseOperation{Type: typ, Table: table})
	}

	for _, m := range ormCallRe.FindAllStringSubmatch(block, -1) {
		add(ormOperation[m[2]], toSnake(m[1]))
	}

	if m := selectRe.FindStringSubmatch(block); m != nil {
		add(routes.OpSelect, m[1])
	}
	if m := insertRe.FindStringSubmatch(block); m != nil {
		add(routes.OpInsert, m[1])
	}
	if m := updateRe.FindStringSubmatch(block); m != nil {
		add(routes.OpUpdate, m[1])
	}
	if m := deleteRe.FindStringSubmatch(block); m != nil {
		add(routes.OpDelete, m[1])
	}

	return ops
}

func blockStatusCodes(block string) []int {
	var codes []int
	seen := map[int]bool{}
	for _, m := range statusRe.FindAllStringSubmatch(block, -1) {
		code, err := strconv.Atoi(m[1])
		if err != nil || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// toSnake converts an ORM model name like "orderItem" to the
// conventional table spelling "order_item".
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
