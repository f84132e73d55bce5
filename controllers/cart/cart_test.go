package cartControllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cart"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

func guestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", "sess-1")
	c.Set("role", "guest")
	return c, w
}

func cartService() *cart.Service {
	mem := store.NewMemory()
	mem.SeedProduct(models.Product{ID: 1, Name: "Hoodie"})
	mem.SeedSubproduct(models.Subproduct{ID: 10, ProductID: 1, Name: "M", Price: 40, Stock: 5, Available: true})
	return cart.NewService(mem)
}

func TestAddCartItem_ZeroQuantityIsUnprocessable(t *testing.T) {
	svc := cartService()

	c, w := guestContext(t, `{"subproduct_id":10,"quantity":0}`)
	AddCartItem(svc)(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidQuantity")
}

func TestAddCartItem_NegativeQuantityIsUnprocessable(t *testing.T) {
	svc := cartService()

	c, w := guestContext(t, `{"subproduct_id":10,"quantity":-2}`)
	AddCartItem(svc)(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidQuantity")
}

func TestAddCartItem_ValidQuantityCreates(t *testing.T) {
	svc := cartService()

	c, w := guestContext(t, `{"subproduct_id":10,"quantity":2}`)
	AddCartItem(svc)(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"quantity":2`)
}
