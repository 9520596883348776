package handlers

import (
	"bitbucket.org/mmdatafocus/consign_backend/models"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/gin-gonic/gin"
)

func CreateProvider(c *gin.Context) {
	var input models.NewProvider
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	provider, err := models.CreateProvider(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "provider created", provider)
}

func UpdateProvider(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input models.NewProvider
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	provider, err := models.UpdateProvider(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "provider updated", provider)
}

func GetProvider(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	provider, err := models.GetProvider(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", provider)
}

func ListProviders(c *gin.Context) {
	name := c.Query("name")
	providers, err := models.GetProviderAll(c.Request.Context(), utils.NilIfEmpty(name))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", providers)
}

func CreateItem(c *gin.Context) {
	var input models.NewItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.ValidationError(err.Error()))
		return
	}
	item, err := models.CreateItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "item created", item)
}

func GetItem(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := models.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", item)
}

func ListItems(c *gin.Context) {
	providerId, err := optionalQueryId(c, "provider_id")
	if err != nil {
		respondError(c, err)
		return
	}
	status := c.Query("status")
	items, err := models.GetItemAll(c.Request.Context(), providerId, utils.NilIfEmpty(models.ItemStatus(status)))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", items)
}

func ReturnItem(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := models.MarkItemReturned(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "item returned to provider", item)
}
