package schema

const ReceiptSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "receipt",
	"fields" : [
		{"name": "method", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "total", "type": "double"},
		{"name": "tendered", "type": "double"},
		{"name": "change", "type": "double"},
		{"name": "balance", "type": "double"},
		{"name": "issued_at", "type": "long"}
	]
}`

// A ReceiptV1 is the wire form of a settlement receipt. Amounts are
// unrounded reference-currency values, issued_at is unix millis.
type ReceiptV1 struct {
	Method   string  `avro:"method"`
	Status   string  `avro:"status"`
	Total    float64 `avro:"total"`
	Tendered float64 `avro:"tendered"`
	Change   float64 `avro:"change"`
	Balance  float64 `avro:"balance"`
	IssuedAt int64   `avro:"issued_at"`
}
