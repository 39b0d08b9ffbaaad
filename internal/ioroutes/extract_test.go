package ioroutes_test

import (
	"testing"

	"github.com/driftwatch/driftwatch/internal/ioroutes"
	"github.com/driftwatch/driftwatch/pkg/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expressSrc = `
const express = require('express');
const app = express();

app.get('/api/widgets', async (req, res) => {
  const widgets = await prisma.widget.findMany();
  res.json(widgets);
});

app.get('/api/widgets/:id', async (req, res) => {
  const widget = await prisma.widget.findUnique({ where: { id } });
  if (!widget) return res.status(404).json({ error: 'not found' });
  res.json(widget);
});

app.post('/api/widgets', async (req, res) => {
  const widget = await prisma.widget.create({ data: req.body });
  res.status(201).json(widget);
});

app.delete('/api/widgets/:id', async (req, res) => {
  await db.query('DELETE FROM widgets WHERE id = $1', [req.params.id]);
  res.sendStatus(204);
});
`

func TestExtractExpress(t *testing.T) {
	rr := ioroutes.ExtractRoutes(expressSrc, "widgets.js")
	require.Len(t, rr, 4)

	list := rr[0]
	assert.Equal(t, routes.GET, list.Method)
	assert.Equal(t, "/api/widgets", list.Path)
	assert.Equal(t, "widgets.js", list.SourceFile)
	assert.Empty(t, list.Parameters)
	require.Len(t, list.Operations, 1)
	assert.Equal(t, routes.OpSelect, list.Operations[0].Type)
	assert.Equal(t, "widget", list.Operations[0].Table)

	get := rr[1]
	assert.Equal(t, routes.GET, get.Method)
	assert.Equal(t, "/api/widgets/:id", get.Path)
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "id", get.Parameters[0].Name)
	assert.True(t, get.HasIDParam())
	assert.Equal(t, []int{404}, get.StatusCodes)

	create := rr[2]
	assert.Equal(t, routes.POST, create.Method)
	require.Len(t, create.Operations, 1)
	assert.Equal(t, routes.OpInsert, create.Operations[0].Type)
	assert.Equal(t, []int{201}, create.StatusCodes)

	del := rr[3]
	assert.Equal(t, routes.DELETE, del.Method)
	require.Len(t, del.Operations, 1)
	assert.Equal(t, routes.OpDelete, del.Operations[0].Type)
	assert.Equal(t, "widgets", del.Operations[0].Table, "raw SQL table")
	assert.Equal(t, []int{204}, del.StatusCodes)
}

func TestExtractDecorators(t *testing.T) {
	src := `
@Controller('orders')
export class OrdersController {
  @Get()
  findAll() {
    return this.prisma.order.findMany();
  }

  @Post('bulk')
  createBulk() {
    return this.prisma.order.createMany({ data: [] });
  }
}
`
	rr := ioroutes.ExtractRoutes(src, "orders.controller.ts")
	require.Len(t, rr, 2)

	assert.Equal(t, routes.GET, rr[0].Method)
	assert.Equal(t, "/", rr[0].Path)
	require.Len(t, rr[0].Operations, 1)
	assert.Equal(t, "order", rr[0].Operations[0].Table)

	assert.Equal(t, routes.POST, rr[1].Method)
	assert.Equal(t, "/bulk", rr[1].Path)
	require.Len(t, rr[1].Operations, 1)
	assert.Equal(t, routes.OpInsert, rr[1].Operations[0].Type)
}

func TestExtractRawSQL(t *testing.T) {
	src := `
router.put('/api/order-items/:id', async (req, res) => {
  await db.query(
    'UPDATE order_items SET quantity = ? WHERE id = ?',
    [req.body.quantity, req.params.id],
  );
  const rows = await db.query('SELECT id, quantity FROM order_items');
  res.json(rows);
});
`
	rr := ioroutes.ExtractRoutes(src, "items.js")
	require.Len(t, rr, 1)
	require.Len(t, rr[0].Operations, 2)
	assert.Equal(t, routes.OpSelect, rr[0].Operations[0].Type)
	assert.Equal(t, "order_items", rr[0].Operations[0].Table)
	assert.Equal(t, routes.OpUpdate, rr[0].Operations[1].Type)
	assert.Equal(t, "order_items", rr[0].Operations[1].Table)
}

func TestExtractCamelCaseModel(t *testing.T) {
	src := `
app.get('/api/order-items', async (req, res) => {
  res.json(await prisma.orderItem.findMany());
});
`
	rr := ioroutes.ExtractRoutes(src, "items.js")
	require.Len(t, rr, 1)
	require.Len(t, rr[0].Operations, 1)
	assert.Equal(t, "order_item", rr[0].Operations[0].Table)
}

// Router objects go by many names; any receiver with a verb call and
// a quoted path registers a route.
func TestExtractAnyReceiver(t *testing.T) {
	src := `
const r = express.Router();
r.get('/things', async (req, res) => {
  res.json(await prisma.thing.findMany());
});
api.post('/things', async (req, res) => {
  res.status(201).json(await prisma.thing.create({ data: req.body }));
});
`
	rr := ioroutes.ExtractRoutes(src, "routes/things.js")
	require.Len(t, rr, 2)
	assert.Equal(t, routes.GET, rr[0].Method)
	assert.Equal(t, "/things", rr[0].Path)
	assert.Equal(t, routes.POST, rr[1].Method)
	assert.Equal(t, "/things", rr[1].Path)
}

func TestExtractNoRoutes(t *testing.T) {
	assert.Empty(t, ioroutes.ExtractRoutes("const x = 1;\n", "util.js"))

	// a map lookup is not a registration; the path literal is what
	// makes a verb call a route
	assert.Empty(t,
		ioroutes.ExtractRoutes("const v = cache.get(key);\n", "util.js"))
}
