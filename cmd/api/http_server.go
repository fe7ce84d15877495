package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	item "github.com/meizuflux/items-api/domain/item"
	"github.com/meizuflux/items-api/infra/loki"
	"github.com/meizuflux/items-api/infra/metrics"
	"github.com/meizuflux/items-api/infra/repositories"
	"github.com/meizuflux/items-api/infra/requestid"
	"github.com/meizuflux/items-api/infra/tracing"
)

const defaultPort = "3131"

const landingPage = `This is a demonstration items API. Everything lives in memory, so restart the process to start fresh. Endpoints are under <a href="/items">/items</a>.`

// ItemRequest is the body for POST and PUT. Fields are pointers so that
// "required" checks presence, not non-zero-ness: a price of 0 and an empty
// tag list are both valid.
type ItemRequest struct {
	Name        *string   `json:"name" binding:"required"`
	Description *string   `json:"description" binding:"required"`
	Price       *float64  `json:"price" binding:"required"`
	Tags        *[]string `json:"tags" binding:"required"`
}

func (r ItemRequest) toItem() item.Item {
	return item.Item{
		Name:        *r.Name,
		Description: *r.Description,
		Price:       *r.Price,
		Tags:        *r.Tags,
	}
}

func NewRouter(itemRepository item.Repository) *gin.Engine {
	r := gin.Default()
	r.Use(requestid.Middleware())
	r.Use(metrics.Middleware)
	r.Use(tracing.Middleware("items"))

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPage))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, itemRepository.List())
	})

	r.GET("/items/:id", func(c *gin.Context) {
		it, ok := itemRepository.Get(c.Param("id"))
		if !ok {
			// Absence renders as a 200 with a null body, not a 404.
			c.JSON(http.StatusOK, nil)
			return
		}
		c.JSON(http.StatusOK, it)
	})

	r.POST("/items/:id", func(c *gin.Context) {
		id := c.Param("id")
		var itemRequest ItemRequest
		if err := c.ShouldBindJSON(&itemRequest); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		created := itemRequest.toItem()
		if err := itemRepository.Create(id, created); err != nil {
			if errors.Is(err, item.ErrAlreadyExists) {
				c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Item with id '%s' already exists.", id)})
				return
			}
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Header("Location", baseURL(c.Request)+"/items/"+id)
		c.JSON(http.StatusCreated, created)
	})

	r.PUT("/items/:id", func(c *gin.Context) {
		id := c.Param("id")
		var itemRequest ItemRequest
		if err := c.ShouldBindJSON(&itemRequest); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		if err := itemRepository.Replace(id, itemRequest.toItem()); err != nil {
			if errors.Is(err, item.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Item with id '%s' does not exist.", id)})
				return
			}
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.PATCH("/items/:id", func(c *gin.Context) {
		id := c.Param("id")
		var patch item.Patch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		if err := itemRepository.ApplyPatch(id, patch); err != nil {
			if errors.Is(err, item.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Item with id '%s' does not exist.", id)})
				return
			}
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.DELETE("/items/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := itemRepository.Delete(id); err != nil {
			if errors.Is(err, item.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("No item with id '%s' found to delete.", id)})
				return
			}
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
	})

	return r
}

func StartServer() {
	if lokiURL := os.Getenv("LOKI_URL"); lokiURL != "" {
		if w := loki.NewWriter(lokiURL, "items"); w != nil {
			gin.DefaultWriter = io.MultiWriter(os.Stdout, w)
			defer w.Close()
		}
	}
	if shutdown := tracing.Init("items"); shutdown != nil {
		defer shutdown()
	}

	itemRepository := repositories.NewItemRepositoryMemory()
	r := NewRouter(itemRepository)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	fmt.Println("Items API is running on port " + port)
	r.Run(":" + port)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
